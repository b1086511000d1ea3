package steam

import (
	"encoding/json"
	"testing"
)

func TestMergeAchievementData(t *testing.T) {
	player := []PlayerAchievement{
		{APIName: "ACH_WIN", Achieved: 1, UnlockTime: 1700000000},
		{APIName: "ACH_MOON", Achieved: 0},
	}
	schema := []SchemaAchievement{
		{Name: "ACH_WIN", DisplayName: "Winner", Description: "Win once", Icon: "icon1", IconGray: "gray1"},
		{Name: "ACH_MOON", DisplayName: "Lunacy", Description: "Reach the moon", Hidden: 1},
	}
	global := []GlobalPercentage{
		{Name: "ACH_WIN", Percent: json.Number("62.5")},
		{Name: "ACH_MOON", Percent: json.Number("not-a-number")},
	}

	merged := MergeAchievementData(player, schema, global)
	if len(merged) != 2 {
		t.Fatalf("MergeAchievementData: want 2, got %d", len(merged))
	}

	win := merged[0]
	if !win.Achieved || win.Name != "Winner" || win.Description != "Win once" {
		t.Fatalf("MergeAchievementData: bad merged row %+v", win)
	}
	if win.GlobalPercent != 62.5 {
		t.Fatalf("GlobalPercent: want 62.5, got %v", win.GlobalPercent)
	}

	moon := merged[1]
	if moon.Achieved || !moon.Hidden {
		t.Fatalf("MergeAchievementData: bad merged row %+v", moon)
	}
	// Unparseable percent coerces to zero.
	if moon.GlobalPercent != 0 {
		t.Fatalf("GlobalPercent: want 0 for unparseable, got %v", moon.GlobalPercent)
	}
}

func TestMergeAchievementDataNameFallback(t *testing.T) {
	player := []PlayerAchievement{{APIName: "ACH_X", Achieved: 0}}
	schema := []SchemaAchievement{{Name: "ACH_X"}}

	merged := MergeAchievementData(player, schema, nil)
	if merged[0].Name != "ACH_X" {
		t.Fatalf("Name fallback: want api name, got %q", merged[0].Name)
	}
}

func TestMergeAchievementDataEmptyInputs(t *testing.T) {
	if got := MergeAchievementData(nil, []SchemaAchievement{{Name: "A"}}, nil); len(got) != 0 {
		t.Fatalf("MergeAchievementData: want empty for no player data, got %d", len(got))
	}
	if got := MergeAchievementData([]PlayerAchievement{{APIName: "A"}}, nil, nil); len(got) != 0 {
		t.Fatalf("MergeAchievementData: want empty for no schema, got %d", len(got))
	}
}

func TestSortLockedFirst(t *testing.T) {
	merged := MergeAchievementData(
		[]PlayerAchievement{
			{APIName: "UNLOCKED_OLD", Achieved: 1, UnlockTime: 100},
			{APIName: "LOCKED_COMMON", Achieved: 0},
			{APIName: "UNLOCKED_NEW", Achieved: 1, UnlockTime: 200},
			{APIName: "LOCKED_RARE", Achieved: 0},
		},
		[]SchemaAchievement{
			{Name: "UNLOCKED_OLD"}, {Name: "LOCKED_COMMON"},
			{Name: "UNLOCKED_NEW"}, {Name: "LOCKED_RARE"},
		},
		[]GlobalPercentage{
			{Name: "LOCKED_COMMON", Percent: json.Number("80")},
			{Name: "LOCKED_RARE", Percent: json.Number("2")},
		},
	)

	sorted := SortLockedFirst(merged)
	want := []string{"LOCKED_RARE", "LOCKED_COMMON", "UNLOCKED_NEW", "UNLOCKED_OLD"}
	for i, name := range want {
		if sorted[i].APIName != name {
			t.Fatalf("SortLockedFirst: at %d want %q got %q", i, name, sorted[i].APIName)
		}
	}
}

func TestImageURLBuilders(t *testing.T) {
	if got := GameHeaderImage(620); got != "https://cdn.cloudflare.steamstatic.com/steam/apps/620/header.jpg" {
		t.Fatalf("GameHeaderImage: got %q", got)
	}
	if got := GameCapsuleImage(620, ""); got != "https://cdn.cloudflare.steamstatic.com/steam/apps/620/capsule_231x87.jpg" {
		t.Fatalf("GameCapsuleImage default size: got %q", got)
	}
	if got := AchievementIconURL(620, ""); got != "" {
		t.Fatalf("AchievementIconURL: want empty for missing hash, got %q", got)
	}
}
