package repo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/abhigupta0507/NadiRakshak-Backend/internal/domain"
)

type OTPRepository struct {
	coll *mongo.Collection
}

func NewOTPRepository(db *mongo.Database) *OTPRepository {
	return &OTPRepository{coll: db.Collection(otpsCollection)}
}

// Upsert replaces whatever code the email had in a single write.
func (r *OTPRepository) Upsert(ctx context.Context, email, code string, createdAt, expiresAt time.Time) error {
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"email": email},
		bson.M{"$set": bson.M{"code": code, "created_at": createdAt, "expires_at": expiresAt}},
		options.Update().SetUpsert(true),
	)
	return err
}

// Find matches email and code exactly and ignores codes that expired before now. The TTL
// monitor only sweeps about once a minute, so expiry is checked here as well.
func (r *OTPRepository) Find(ctx context.Context, email, code string, now time.Time) (*domain.OTP, error) {
	var otp domain.OTP
	err := r.coll.FindOne(ctx, bson.M{
		"email":      email,
		"code":       code,
		"expires_at": bson.M{"$gt": now},
	}).Decode(&otp)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &otp, nil
}

func (r *OTPRepository) Delete(ctx context.Context, email string) error {
	_, err := r.coll.DeleteOne(ctx, bson.M{"email": email})
	return err
}
