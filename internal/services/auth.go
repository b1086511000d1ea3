package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/steamachieve/steamachieve-backend/internal/clients/steam"
	"github.com/steamachieve/steamachieve-backend/internal/logger"
	"github.com/steamachieve/steamachieve-backend/internal/repos"
	"github.com/steamachieve/steamachieve-backend/internal/types"
	"github.com/steamachieve/steamachieve-backend/internal/utils"
)

const steamOpenIDEndpoint = "https://steamcommunity.com/openid/login"

var steamIDFromClaimedID = regexp.MustCompile(`^https?://steamcommunity\.com/openid/id/(\d+)$`)

type AuthService interface {
	BeginLogin() string
	CompleteLogin(ctx context.Context, callbackParams url.Values) (string, *types.User, error)
	VerifyToken(tokenString string) (string, error)
}

type authService struct {
	log          *logger.Logger
	steam        steam.Client
	userRepo     repos.UserRepo
	httpClient   *http.Client
	jwtSecretKey string
	tokenTTL     time.Duration
	realm        string
	returnTo     string
}

func NewAuthService(steamClient steam.Client, userRepo repos.UserRepo, baseLog *logger.Logger) (AuthService, error) {
	log := baseLog.With("service", "AuthService")

	secret := utils.GetEnv("JWT_SECRET_KEY", "", log)
	if secret == "" {
		return nil, fmt.Errorf("missing JWT_SECRET_KEY")
	}

	realm := utils.GetEnv("AUTH_REALM", "http://localhost:8080", log)
	returnTo := utils.GetEnv("AUTH_RETURN_TO", realm+"/auth/callback", log)
	ttlHours := utils.GetEnvAsInt("JWT_TTL_HOURS", 168, log)

	return &authService{
		log:          log,
		steam:        steamClient,
		userRepo:     userRepo,
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		jwtSecretKey: secret,
		tokenTTL:     time.Duration(ttlHours) * time.Hour,
		realm:        realm,
		returnTo:     returnTo,
	}, nil
}

// BeginLogin builds the Steam OpenID redirect URL. Steam is the only
// identity provider; there is no local password flow.
func (as *authService) BeginLogin() string {
	params := url.Values{}
	params.Set("openid.ns", "http://specs.openid.net/auth/2.0")
	params.Set("openid.mode", "checkid_setup")
	params.Set("openid.return_to", as.returnTo)
	params.Set("openid.realm", as.realm)
	params.Set("openid.identity", "http://specs.openid.net/auth/2.0/identifier_select")
	params.Set("openid.claimed_id", "http://specs.openid.net/auth/2.0/identifier_select")
	return steamOpenIDEndpoint + "?" + params.Encode()
}

// CompleteLogin verifies the OpenID assertion with Steam, upserts the
// user from their player summary and returns a signed session token.
func (as *authService) CompleteLogin(ctx context.Context, callbackParams url.Values) (string, *types.User, error) {
	steamID, err := as.verifyAssertion(ctx, callbackParams)
	if err != nil {
		return "", nil, err
	}

	user := &types.User{SteamID: steamID}
	if players, err := as.steam.GetPlayerSummaries(ctx, []string{steamID}); err != nil {
		as.log.Warn("player summary fetch failed", "steam_id", steamID, "error", err)
	} else if len(players) > 0 {
		user.PersonaName = players[0].PersonaName
		user.ProfileURL = players[0].ProfileURL
		user.AvatarURL = players[0].AvatarFull
	}

	if _, err := as.userRepo.Upsert(ctx, nil, user); err != nil {
		return "", nil, fmt.Errorf("upsert user: %w", err)
	}
	if err := as.userRepo.TouchLastLogin(ctx, nil, steamID); err != nil {
		as.log.Warn("last login update failed", "steam_id", steamID, "error", err)
	}

	token, err := as.issueToken(steamID)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// verifyAssertion replays the callback parameters back to Steam in
// check_authentication mode and extracts the steam id from the
// claimed_id on a positive answer.
func (as *authService) verifyAssertion(ctx context.Context, callbackParams url.Values) (string, error) {
	claimedID := callbackParams.Get("openid.claimed_id")
	match := steamIDFromClaimedID.FindStringSubmatch(claimedID)
	if match == nil {
		return "", fmt.Errorf("unexpected claimed_id %q", claimedID)
	}
	steamID := match[1]

	verify := url.Values{}
	for key, vals := range callbackParams {
		if len(vals) > 0 {
			verify.Set(key, vals[0])
		}
	}
	verify.Set("openid.mode", "check_authentication")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, steamOpenIDEndpoint,
		strings.NewReader(verify.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := as.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("openid verification request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("openid verification read: %w", err)
	}
	if !strings.Contains(string(body), "is_valid:true") {
		return "", fmt.Errorf("openid assertion rejected by steam")
	}
	return steamID, nil
}

func (as *authService) issueToken(steamID string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   steamID,
		ExpiresAt: jwt.NewNumericDate(now.Add(as.tokenTTL)),
		IssuedAt:  jwt.NewNumericDate(now),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.jwtSecretKey))
}

// VerifyToken parses and validates a session token and returns the
// steam id it was issued for.
func (as *authService) VerifyToken(tokenString string) (string, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(as.jwtSecretKey), nil
	})
	if err != nil {
		return "", fmt.Errorf("parse token: %w", err)
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return "", fmt.Errorf("invalid or expired token")
	}
	return claims.Subject, nil
}
