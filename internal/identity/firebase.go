package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

const signInWithPasswordURL = "https://identitytoolkit.googleapis.com/v1/accounts:signInWithPassword"

// FirebaseProvider implements IProvider with the Firebase Admin SDK.
type FirebaseProvider struct {
	client     *fbauth.Client
	webAPIKey  string
	signInURL  string
	httpClient *http.Client
}

// NewFirebaseProvider initialises the Admin SDK. credentialsFile may be empty to
// use application default credentials. webAPIKey enables password verification.
func NewFirebaseProvider(ctx context.Context, projectID, credentialsFile, webAPIKey string) (*FirebaseProvider, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	var appCfg *firebase.Config
	if projectID != "" {
		appCfg = &firebase.Config{ProjectID: projectID}
	}

	app, err := firebase.NewApp(ctx, appCfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialise firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialise firebase auth client: %w", err)
	}

	return &FirebaseProvider{
		client:     client,
		webAPIKey:  webAPIKey,
		signInURL:  signInWithPasswordURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}, nil
}

func fromRecord(rec *fbauth.UserRecord) *User {
	if rec == nil || rec.UserInfo == nil {
		return nil
	}
	return &User{
		UID:         rec.UID,
		Email:       rec.Email,
		DisplayName: rec.DisplayName,
		PhotoURL:    rec.PhotoURL,
		Disabled:    rec.Disabled,
	}
}

func (p *FirebaseProvider) CreateUser(ctx context.Context, email, password, displayName string) (*User, error) {
	params := (&fbauth.UserToCreate{}).
		Email(email).
		Password(password).
		DisplayName(displayName)

	rec, err := p.client.CreateUser(ctx, params)
	if err != nil {
		if fbauth.IsEmailAlreadyExists(err) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("failed to create firebase user: %w", err)
	}
	return fromRecord(rec), nil
}

func (p *FirebaseProvider) GetUser(ctx context.Context, uid string) (*User, error) {
	rec, err := p.client.GetUser(ctx, uid)
	if err != nil {
		if fbauth.IsUserNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get firebase user %s: %w", uid, err)
	}
	return fromRecord(rec), nil
}

func (p *FirebaseProvider) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	rec, err := p.client.GetUserByEmail(ctx, email)
	if err != nil {
		if fbauth.IsUserNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get firebase user by email: %w", err)
	}
	return fromRecord(rec), nil
}

func (p *FirebaseProvider) DeleteUser(ctx context.Context, uid string) error {
	if err := p.client.DeleteUser(ctx, uid); err != nil {
		if fbauth.IsUserNotFound(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to delete firebase user %s: %w", uid, err)
	}
	return nil
}

// VerifyPassword calls the Identity Toolkit sign-in endpoint; the Admin SDK has no password check.
func (p *FirebaseProvider) VerifyPassword(ctx context.Context, email, password string) (bool, error) {
	if p.webAPIKey == "" {
		return false, nil
	}
	return verifyPasswordREST(ctx, p.httpClient, p.signInURL, p.webAPIKey, email, password)
}

type signInRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type signInError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func verifyPasswordREST(ctx context.Context, client *http.Client, endpoint, apiKey, email, password string) (bool, error) {
	body, err := json.Marshal(signInRequest{Email: email, Password: password, ReturnSecureToken: false})
	if err != nil {
		return false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint+"?key="+url.QueryEscape(apiKey), bytes.NewReader(body))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return false, fmt.Errorf("password verification request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		return true, nil
	}

	var apiErr signInError
	_ = json.NewDecoder(resp.Body).Decode(&apiErr)
	switch apiErr.Error.Message {
	case "INVALID_PASSWORD", "INVALID_LOGIN_CREDENTIALS", "EMAIL_NOT_FOUND", "USER_DISABLED":
		return false, ErrInvalidPassword
	}
	return false, fmt.Errorf("password verification failed with status %d: %s", resp.StatusCode, apiErr.Error.Message)
}
