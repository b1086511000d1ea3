package steam

import "fmt"

// CDN image URL builders. These are plain URL constructions, no network.

func AchievementIconURL(appID int, iconHash string) string {
	if iconHash == "" {
		return ""
	}
	return fmt.Sprintf("%s/%d/%s.jpg", cdnURL, appID, iconHash)
}

func GameHeaderImage(appID int) string {
	return fmt.Sprintf("%s/%d/header.jpg", storeCDN, appID)
}

func GameCapsuleImage(appID int, size string) string {
	if size == "" {
		size = "231x87"
	}
	return fmt.Sprintf("%s/%d/capsule_%s.jpg", storeCDN, appID, size)
}

func GameHeroImage(appID int) string {
	return fmt.Sprintf("%s/%d/library_hero.jpg", storeCDN, appID)
}

func GameLogo(appID int) string {
	return fmt.Sprintf("%s/%d/logo.png", storeCDN, appID)
}

func GameLibraryCapsule(appID int) string {
	return fmt.Sprintf("%s/%d/library_600x900.jpg", storeCDN, appID)
}
