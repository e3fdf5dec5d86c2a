package marketplace_test

import (
	"context"
	"errors"
	"testing"

	"slideforge/core/storage"
	"slideforge/core/storage/mocks"
	"slideforge/feature/marketplace"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

var testCfg = storage.Config{Bucket: "assets", BundlePrefix: "bundles/"}

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)
	return db, dbMock
}

func TestNewService_RequiresDB(t *testing.T) {
	_, err := marketplace.NewService(nil, new(mocks.Client), testCfg, zap.NewNop())
	assert.Error(t, err)
}

func TestBrowse(t *testing.T) {
	db, dbMock := newMockDB(t)
	client := new(mocks.Client)

	dbMock.ExpectQuery("SELECT \\* FROM `deck_templates` WHERE published = \\?").
		WithArgs(true).
		WillReturnRows(sqlmock.NewRows([]string{"id", "slug", "name", "published"}).
			AddRow(1, "pitch", "Pitch Deck", true).
			AddRow(2, "retro", "Sprint Retro", true))

	// pitch has a preview, retro does not
	client.On("StatObject", mock.Anything, "assets", "previews/pitch.png", minio.StatObjectOptions{}).
		Return(minio.ObjectInfo{Key: "previews/pitch.png"}, nil)
	client.On("StatObject", mock.Anything, "assets", "previews/retro.png", minio.StatObjectOptions{}).
		Return(minio.ObjectInfo{}, errors.New("not found"))

	svc, err := marketplace.NewService(db, client, testCfg, zap.NewNop())
	require.NoError(t, err)

	listings, err := svc.Browse(context.Background())
	require.NoError(t, err)
	require.Len(t, listings, 2)
	assert.Equal(t, "previews/pitch.png", listings[0].Preview)
	assert.Empty(t, listings[1].Preview)

	require.NoError(t, dbMock.ExpectationsWereMet())
	client.AssertExpectations(t)
}
