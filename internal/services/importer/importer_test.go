package importer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/subscription-tracker/internal/models"
	subservices "github.com/magabrotheeeer/subscription-tracker/internal/services/subscription"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) InsertManySingle(ctx context.Context, subs []models.Subscription) (int, error) {
	args := m.Called(ctx, subs)
	return args.Int(0), args.Error(1)
}
func (m *RepoMock) InsertManyFamily(ctx context.Context, groups []models.FamilyGroup) (int, error) {
	args := m.Called(ctx, groups)
	return args.Int(0), args.Error(1)
}

type CacheMock struct{ mock.Mock }

func (m *CacheMock) Invalidate(key string) error {
	return m.Called(key).Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestClassifyKind(t *testing.T) {
	tests := []struct {
		name string
		item map[string]any
		want models.Kind
	}{
		{
			name: "непустой managerEmail",
			item: map[string]any{"managerEmail": "m@example.com"},
			want: models.KindFamily,
		},
		{
			name: "пустой managerEmail не делает запись семейной",
			item: map[string]any{"managerEmail": "", "email": "a@example.com"},
			want: models.KindSingle,
		},
		{
			name: "массив familyMembers",
			item: map[string]any{"familyMembers": []any{"a@example.com"}},
			want: models.KindFamily,
		},
		{
			name: "массив members",
			item: map[string]any{"members": []any{}},
			want: models.KindFamily,
		},
		{
			name: "явный type family",
			item: map[string]any{"type": "family"},
			want: models.KindFamily,
		},
		{
			name: "обычная запись с email",
			item: map[string]any{"email": "a@example.com"},
			want: models.KindSingle,
		},
		{
			name: "пустая запись",
			item: map[string]any{},
			want: models.KindSingle,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyKind(tt.item))
		})
	}
}

func TestNormalizeSingle(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	t.Run("отсутствующий email заменяется на заглушку", func(t *testing.T) {
		sub := NormalizeSingle(map[string]any{"startDate": "2024-01-01"}, now)
		assert.Equal(t, PlaceholderEmail, sub.Email)
	})

	t.Run("endDate берётся из записи, если он валиден", func(t *testing.T) {
		sub := NormalizeSingle(map[string]any{
			"email":   "a@example.com",
			"endDate": "2024-12-31T00:00:00Z",
		}, now)
		assert.True(t, sub.EndDate.Equal(time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)))
	})

	t.Run("endDate принимается и как дата без времени", func(t *testing.T) {
		sub := NormalizeSingle(map[string]any{
			"email":   "a@example.com",
			"endDate": "2024-12-31",
		}, now)
		assert.True(t, sub.EndDate.Equal(time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)))
	})

	t.Run("endDate выводится из startDate и срока", func(t *testing.T) {
		sub := NormalizeSingle(map[string]any{
			"email":        "a@example.com",
			"startDate":    "2024-01-01",
			"durationDays": float64(30),
		}, now)
		assert.True(t, sub.EndDate.Equal(time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)))
	})

	t.Run("без дат endDate заменяется на текущий момент", func(t *testing.T) {
		sub := NormalizeSingle(map[string]any{"email": "a@example.com"}, now)
		assert.True(t, sub.EndDate.Equal(now))
		assert.True(t, sub.CreatedAt.Equal(now))
	})

	t.Run("входящий идентификатор отбрасывается", func(t *testing.T) {
		sub := NormalizeSingle(map[string]any{
			"id":    "507f1f77bcf86cd799439011",
			"email": "a@example.com",
		}, now)
		assert.Empty(t, sub.ID)
	})

	t.Run("повторная нормализация не меняет запись", func(t *testing.T) {
		first := NormalizeSingle(map[string]any{
			"email":        "a@example.com",
			"startDate":    "2024-01-01",
			"startTime":    "12:30",
			"durationDays": float64(30),
		}, now)

		raw, err := json.Marshal(first)
		require.NoError(t, err)
		var roundTripped map[string]any
		require.NoError(t, json.Unmarshal(raw, &roundTripped))

		second := NormalizeSingle(roundTripped, now.Add(time.Hour))
		assert.Equal(t, first.Email, second.Email)
		assert.Equal(t, first.StartDate, second.StartDate)
		assert.Equal(t, first.StartTime, second.StartTime)
		assert.Equal(t, first.DurationDays, second.DurationDays)
		assert.Equal(t, first.DurationHours, second.DurationHours)
		assert.True(t, first.EndDate.Equal(second.EndDate))
		assert.True(t, first.CreatedAt.Equal(second.CreatedAt))
	})
}

func TestNormalizeFamily(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	t.Run("участники собираются из первого присутствующего поля", func(t *testing.T) {
		group := NormalizeFamily(map[string]any{
			"managerEmail":  "m@example.com",
			"familyMembers": []any{"a@example.com", "", "b@example.com"},
		}, now)
		assert.Equal(t, []string{"a@example.com", "b@example.com"}, group.MemberEmails)
	})

	t.Run("memberEmails имеет приоритет над members", func(t *testing.T) {
		group := NormalizeFamily(map[string]any{
			"managerEmail": "m@example.com",
			"memberEmails": []any{"x@example.com"},
			"members":      []any{"y@example.com"},
		}, now)
		assert.Equal(t, []string{"x@example.com"}, group.MemberEmails)
	})

	t.Run("неизвестный type приводится к regular", func(t *testing.T) {
		group := NormalizeFamily(map[string]any{
			"managerEmail": "m@example.com",
			"type":         "family",
		}, now)
		assert.Equal(t, models.GroupTypeRegular, group.Type)
	})

	t.Run("type renewing сохраняется", func(t *testing.T) {
		group := NormalizeFamily(map[string]any{
			"managerEmail": "m@example.com",
			"type":         "renewing",
		}, now)
		assert.Equal(t, models.GroupTypeRenewing, group.Type)
	})
}

func TestService_Import(t *testing.T) {
	t.Run("плоский массив со смешанными записями", func(t *testing.T) {
		repo := new(RepoMock)
		cache := new(CacheMock)
		repo.On("InsertManySingle", mock.Anything, mock.MatchedBy(func(subs []models.Subscription) bool {
			return len(subs) == 1 && subs[0].Email == "a@example.com"
		})).Return(1, nil).Once()
		repo.On("InsertManyFamily", mock.Anything, mock.MatchedBy(func(groups []models.FamilyGroup) bool {
			return len(groups) == 1 && groups[0].ManagerEmail == "m@example.com"
		})).Return(1, nil).Once()
		cache.On("Invalidate", subservices.ListCacheKey).Return(nil).Once()

		svc := New(repo, cache, newNoopLogger())
		payload := []byte(`[
			{"email": "a@example.com", "startDate": "2024-01-01", "durationDays": 30},
			{"managerEmail": "m@example.com", "memberEmails": ["x@example.com"]}
		]`)

		result, err := svc.Import(context.Background(), payload)
		require.NoError(t, err)
		assert.Equal(t, 1, result.SingleCount)
		assert.Equal(t, 1, result.FamilyCount)
		repo.AssertExpectations(t)
		cache.AssertExpectations(t)
	})

	t.Run("объект с раздельными списками", func(t *testing.T) {
		repo := new(RepoMock)
		cache := new(CacheMock)
		repo.On("InsertManySingle", mock.Anything, mock.Anything).Return(2, nil).Once()
		repo.On("InsertManyFamily", mock.Anything, mock.Anything).Return(1, nil).Once()
		cache.On("Invalidate", subservices.ListCacheKey).Return(nil).Once()

		svc := New(repo, cache, newNoopLogger())
		payload := []byte(`{
			"singleSubscriptions": [
				{"email": "a@example.com"},
				{"email": "b@example.com"}
			],
			"familySubscriptions": [
				{"managerEmail": "m@example.com"}
			]
		}`)

		result, err := svc.Import(context.Background(), payload)
		require.NoError(t, err)
		assert.Equal(t, 2, result.SingleCount)
		assert.Equal(t, 1, result.FamilyCount)
	})

	t.Run("пустой массив даёт ErrNoValidRecords", func(t *testing.T) {
		svc := New(new(RepoMock), new(CacheMock), newNoopLogger())
		_, err := svc.Import(context.Background(), []byte(`[]`))
		assert.ErrorIs(t, err, ErrNoValidRecords)
	})

	t.Run("невалидный JSON даёт ErrInvalidPayload", func(t *testing.T) {
		svc := New(new(RepoMock), new(CacheMock), newNoopLogger())
		_, err := svc.Import(context.Background(), []byte(`not a json`))
		assert.ErrorIs(t, err, ErrInvalidPayload)
	})

	t.Run("ошибка вставки семейных групп не откатывает одиночные", func(t *testing.T) {
		repo := new(RepoMock)
		cache := new(CacheMock)
		repo.On("InsertManySingle", mock.Anything, mock.Anything).Return(1, nil).Once()
		repo.On("InsertManyFamily", mock.Anything, mock.Anything).Return(0, errors.New("db error")).Once()

		svc := New(repo, cache, newNoopLogger())
		payload := []byte(`[
			{"email": "a@example.com"},
			{"managerEmail": "m@example.com"}
		]`)

		_, err := svc.Import(context.Background(), payload)
		require.Error(t, err)
		repo.AssertExpectations(t)
		cache.AssertNotCalled(t, "Invalidate", mock.Anything)
	})
}
