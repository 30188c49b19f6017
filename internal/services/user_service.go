package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/hasanRafi2002/asgn-12-server/internal/db"
	"github.com/hasanRafi2002/asgn-12-server/internal/identity"
	"github.com/hasanRafi2002/asgn-12-server/internal/models"
	"github.com/hasanRafi2002/asgn-12-server/internal/utils"
)

// StoreUserInput is the profile sent by the client after an identity-provider sign-in.
// Clients send the photo as profileImage; photoURL is accepted as an alias.
type StoreUserInput struct {
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	ProfileImage *string `json:"profileImage"`
	PhotoURL     *string `json:"photoURL"`
	Role         string  `json:"role"`
	CreatedAt    string  `json:"createdAt"`
}

// Photo returns the profile image URL, preferring profileImage over photoURL.
func (in StoreUserInput) Photo() *string {
	if in.ProfileImage != nil {
		return in.ProfileImage
	}
	return in.PhotoURL
}

// createdAtLayouts are the timestamp formats clients send, including the
// RFC 1123 creationTime reported by the identity provider.
var createdAtLayouts = []string{
	time.RFC3339Nano,
	time.RFC1123,
	time.RFC1123Z,
	"Mon, 2 Jan 2006 15:04:05 MST",
	time.RFC850,
	time.ANSIC,
	"2006-01-02T15:04:05.999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseClientTime parses a client-supplied timestamp, returning false when no layout matches.
func parseClientTime(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range createdAtLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), true
		}
	}
	if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), true
	}
	return time.Time{}, false
}

// IUserService defines the interface for user-related operations.
type IUserService interface {
	StoreUserData(ctx context.Context, in StoreUserInput) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateRole(ctx context.Context, id, role string) (*models.User, error)
	MarkFraud(ctx context.Context, id string) (*models.User, error)
	Delete(ctx context.Context, id string) error
}

// userService implements IUserService.
type userService struct {
	db       *mongo.Database
	identity identity.IProvider
}

// NewUserService creates a new UserService. provider may be nil, in which case
// deleting a user leaves the identity-provider account alone.
func NewUserService(db *mongo.Database, provider identity.IProvider) IUserService {
	return &userService{db: db, identity: provider}
}

func (s *userService) collection() *mongo.Collection {
	return s.db.Collection(db.UsersCollection)
}

// StoreUserData creates the profile on first sign-in. Later calls with the same
// email return the stored profile untouched.
func (s *userService) StoreUserData(ctx context.Context, in StoreUserInput) (*models.User, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if name == "" || email == "" {
		return nil, NewValidationError("Name and email are required")
	}

	role := strings.TrimSpace(in.Role)
	if role == "" {
		role = models.RoleUser
	}
	createdAt := time.Now().UTC()
	if t, ok := parseClientTime(in.CreatedAt); ok {
		createdAt = t
	}

	update := bson.M{"$setOnInsert": bson.M{
		"name":      name,
		"email":     email,
		"photoURL":  in.Photo(),
		"role":      role,
		"createdAt": createdAt,
		"updatedAt": createdAt,
	}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var user models.User
	err := s.collection().FindOneAndUpdate(ctx, bson.M{"email": email}, update, opts).Decode(&user)
	if err != nil && db.IsMongoDuplicateKeyError(err) {
		// Lost an insert race on the unique email index; the winner's record stands.
		return s.FindByEmail(ctx, email)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to store user %s: %w", email, err)
	}
	return &user, nil
}

func (s *userService) List(ctx context.Context) ([]models.User, error) {
	return findAll[models.User](ctx, s.collection(), bson.M{})
}

func (s *userService) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	filter := bson.M{"email": strings.ToLower(strings.TrimSpace(email))}
	if err := s.collection().FindOne(ctx, filter).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, NewNotFoundError(MsgUserNotFound)
		}
		return nil, fmt.Errorf("error finding user by email %s: %w", email, err)
	}
	return &user, nil
}

func (s *userService) UpdateRole(ctx context.Context, id, role string) (*models.User, error) {
	role = strings.TrimSpace(role)
	if role == "" {
		return nil, NewValidationError("Role is required")
	}
	return s.setRole(ctx, id, role)
}

// MarkFraud flags the account only. The user's listings and offers stay as they are.
func (s *userService) MarkFraud(ctx context.Context, id string) (*models.User, error) {
	return s.setRole(ctx, id, models.RoleFraud)
}

func (s *userService) setRole(ctx context.Context, id, role string) (*models.User, error) {
	oid, err := parseObjectID(id, MsgUserNotFound)
	if err != nil {
		return nil, err
	}

	var user models.User
	update := bson.M{"$set": bson.M{"role": role, "updatedAt": time.Now().UTC()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := s.collection().FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, NewNotFoundError(MsgUserNotFound)
		}
		return nil, fmt.Errorf("failed to set role of user %s: %w", id, err)
	}
	return &user, nil
}

// Delete removes the profile, then the identity-provider account on a best-effort basis.
func (s *userService) Delete(ctx context.Context, id string) error {
	oid, err := parseObjectID(id, MsgUserNotFound)
	if err != nil {
		return err
	}

	var user models.User
	if err := s.collection().FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return NewNotFoundError(MsgUserNotFound)
		}
		return fmt.Errorf("failed to delete user %s: %w", id, err)
	}

	if s.identity == nil {
		return nil
	}
	account, err := s.identity.GetUserByEmail(ctx, user.Email)
	if err == nil {
		err = s.identity.DeleteUser(ctx, account.UID)
	}
	if err != nil && !errors.Is(err, identity.ErrUserNotFound) {
		utils.Logger().Warn("failed to delete identity account", zap.String("email", user.Email), zap.Error(err))
	}
	return nil
}
