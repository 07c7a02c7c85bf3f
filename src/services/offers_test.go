package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"rewards/src/db"
	"rewards/src/types"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func offerColumns() []string {
	return []string{"id", "title", "slug", "amount", "icon", "label", "description", "steps", "store_url", "active", "requires_proof", "created_at", "updated_at"}
}

func TestUpdateOnlyTouchesSuppliedFields(t *testing.T) {
	gormDB, mock := db.NewMockDB()
	svc := NewOfferService(gormDB, &recordingFeed{})

	offerId := uuid.New()

	// Body carries title plus icon explicitly nulled; everything else is
	// absent and must stay out of the SET list.
	var body types.UpdateOfferRequestBody
	err := json.Unmarshal([]byte(`{"title":"Install BarApp","icon":null}`), &body)
	assert.NoError(t, err)
	assert.True(t, body.Title.Set)
	assert.True(t, body.Icon.Set)
	assert.Nil(t, body.Icon.Val)
	assert.False(t, body.Amount.Set)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "offers" SET "icon"=\$1,"slug"=\$2,"title"=\$3,"updated_at"=\$4 WHERE id = \$5`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	mock.ExpectQuery(`SELECT \* FROM "offers" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows(offerColumns()).
			AddRow(offerId.String(), "Install BarApp", "install-barapp", 5.0, nil, nil, nil, []byte(`[]`), nil, true, false, time.Now(), time.Now()))

	got, err := svc.Update(context.Background(), offerId, &body)

	assert.NoError(t, err)
	assert.Equal(t, "Install BarApp", got.Title)
	assert.Equal(t, "install-barapp", got.Slug)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetVisibilityIsAnActiveOnlyPatch(t *testing.T) {
	gormDB, mock := db.NewMockDB()
	feed := &recordingFeed{}
	svc := NewOfferService(gormDB, feed)

	offerId := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "offers" SET "active"=\$1,"updated_at"=\$2 WHERE id = \$3`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	mock.ExpectQuery(`SELECT \* FROM "offers" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows(offerColumns()).
			AddRow(offerId.String(), "Title", "title", 5.0, nil, nil, nil, []byte(`[]`), nil, false, false, time.Now(), time.Now()))

	got, err := svc.SetVisibility(context.Background(), offerId, false)

	assert.NoError(t, err)
	assert.False(t, got.Active)
	assert.Equal(t, []types.Change{{Table: "offers", Op: types.CHANGE_UPDATE}}, feed.changes)
	assert.NoError(t, mock.ExpectationsWereMet())
}
