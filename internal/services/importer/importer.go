// Package importer реализует импорт записей из внешнего JSON-файла:
// классификацию каждого элемента по коллекции, нормализацию к каноничной
// форме и пакетную вставку с подсчётом по коллекциям.
//
// Импорт не атомарен между коллекциями: пакет одиночных подписок
// вставляется первым и не откатывается при ошибке вставки семейных групп.
package importer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/subscription-tracker/internal/lib/expiry"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
	subservices "github.com/magabrotheeeer/subscription-tracker/internal/services/subscription"
)

// ErrNoValidRecords возвращается, когда после нормализации оба пакета пусты.
var ErrNoValidRecords = errors.New("no valid records found to import")

// ErrInvalidPayload возвращается, когда тело импорта не является
// ни массивом записей, ни объектом с ключами single/family.
var ErrInvalidPayload = errors.New("invalid import payload")

// PlaceholderEmail подставляется вместо отсутствующего email при импорте.
const PlaceholderEmail = "no-email@provided.com"

// Repository определяет методы пакетной вставки в хранилище.
type Repository interface {
	// InsertManySingle вставляет пакет одиночных подписок, возвращает их число.
	InsertManySingle(ctx context.Context, subs []models.Subscription) (int, error)
	// InsertManyFamily вставляет пакет семейных групп, возвращает их число.
	InsertManyFamily(ctx context.Context, groups []models.FamilyGroup) (int, error)
}

// Cache описывает инвалидацию кеша списков после импорта.
type Cache interface {
	Invalidate(key string) error
}

// Service реализует импорт записей.
type Service struct {
	repo  Repository
	cache Cache
	log   *slog.Logger
}

// New создает новый Service импорта.
func New(repo Repository, cache Cache, log *slog.Logger) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// Result — количество фактически вставленных записей по коллекциям.
type Result struct {
	SingleCount int `json:"singleCount"`
	FamilyCount int `json:"familyCount"`
}

// Import разбирает тело запроса, распределяет записи по коллекциям
// и вставляет каждый пакет отдельной операцией.
//
// Поддерживаются две формы тела: плоский массив записей смешанных видов
// (каждый элемент классифицируется отдельно) и объект с явными списками
// single/family (вид берётся из контейнера без переклассификации).
func (s *Service) Import(ctx context.Context, payload []byte) (*Result, error) {
	singleBatch, familyBatch, err := partition(payload, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if len(singleBatch) == 0 && len(familyBatch) == 0 {
		return nil, ErrNoValidRecords
	}

	var result Result
	if len(singleBatch) > 0 {
		count, err := s.repo.InsertManySingle(ctx, singleBatch)
		if err != nil {
			return nil, err
		}
		result.SingleCount = count
	}
	if len(familyBatch) > 0 {
		count, err := s.repo.InsertManyFamily(ctx, familyBatch)
		if err != nil {
			return nil, err
		}
		result.FamilyCount = count
	}

	s.log.Info("import finished",
		slog.Int("single_count", result.SingleCount),
		slog.Int("family_count", result.FamilyCount))

	if err := s.cache.Invalidate(subservices.ListCacheKey); err != nil {
		s.log.Warn("failed to invalidate list cache", slog.Any("err", err))
	}
	return &result, nil
}

// partition разбирает тело импорта в два нормализованных пакета.
func partition(payload []byte, now time.Time) ([]models.Subscription, []models.FamilyGroup, error) {
	var flat []map[string]any
	if err := json.Unmarshal(payload, &flat); err == nil {
		var singleBatch []models.Subscription
		var familyBatch []models.FamilyGroup
		for _, item := range flat {
			if ClassifyKind(item) == models.KindFamily {
				familyBatch = append(familyBatch, NormalizeFamily(item, now))
			} else {
				singleBatch = append(singleBatch, NormalizeSingle(item, now))
			}
		}
		return singleBatch, familyBatch, nil
	}

	var container map[string]json.RawMessage
	if err := json.Unmarshal(payload, &container); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	rawSingle, err := containerList(container, "single", "singleSubscriptions")
	if err != nil {
		return nil, nil, err
	}
	rawFamily, err := containerList(container, "family", "familySubscriptions")
	if err != nil {
		return nil, nil, err
	}

	var singleBatch []models.Subscription
	for _, item := range rawSingle {
		singleBatch = append(singleBatch, NormalizeSingle(item, now))
	}
	var familyBatch []models.FamilyGroup
	for _, item := range rawFamily {
		familyBatch = append(familyBatch, NormalizeFamily(item, now))
	}
	return singleBatch, familyBatch, nil
}

// containerList достаёт список записей по первому присутствующему ключу.
func containerList(container map[string]json.RawMessage, keys ...string) ([]map[string]any, error) {
	for _, key := range keys {
		raw, ok := container[key]
		if !ok {
			continue
		}
		var items []map[string]any
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("%w: field %s: %v", ErrInvalidPayload, key, err)
		}
		return items, nil
	}
	return nil, nil
}

// ClassifyKind относит сырую запись к коллекции. Запись семейная, если у неё
// непустой managerEmail, есть массив familyMembers или members, либо явный
// type == "family". Всё остальное — одиночная подписка.
func ClassifyKind(item map[string]any) models.Kind {
	if email, ok := item["managerEmail"].(string); ok && email != "" {
		return models.KindFamily
	}
	if _, ok := item["familyMembers"].([]any); ok {
		return models.KindFamily
	}
	if _, ok := item["members"].([]any); ok {
		return models.KindFamily
	}
	if t, ok := item["type"].(string); ok && t == "family" {
		return models.KindFamily
	}
	return models.KindSingle
}

// NormalizeSingle приводит сырую запись к канонической одиночной подписке.
// Входящие идентификаторы отбрасываются, сроки приводятся к числам,
// endDate берётся из записи, выводится из startDate или заменяется на now.
func NormalizeSingle(item map[string]any, now time.Time) models.Subscription {
	email, _ := item["email"].(string)
	if email == "" {
		email = PlaceholderEmail
	}

	startDate, startTime, days, hours := temporalFields(item)

	return models.Subscription{
		Email:         email,
		StartDate:     startDate,
		StartTime:     startTime,
		DurationDays:  days,
		DurationHours: hours,
		EndDate:       resolveEndDate(item, startDate, startTime, days, hours, now),
		CreatedAt:     resolveCreatedAt(item, now),
	}
}

// NormalizeFamily приводит сырую запись к канонической семейной группе.
// Список участников собирается из первого присутствующего поля
// memberEmails, familyMembers или members.
func NormalizeFamily(item map[string]any, now time.Time) models.FamilyGroup {
	managerEmail, _ := item["managerEmail"].(string)

	var members []string
	for _, key := range []string{"memberEmails", "familyMembers", "members"} {
		raw, ok := item[key].([]any)
		if !ok {
			continue
		}
		for _, v := range raw {
			if email, ok := v.(string); ok {
				members = append(members, email)
			}
		}
		break
	}

	groupType := models.GroupTypeRegular
	if t, ok := item["type"].(string); ok && t == models.GroupTypeRenewing {
		groupType = models.GroupTypeRenewing
	}

	startDate, startTime, days, hours := temporalFields(item)

	return models.FamilyGroup{
		ManagerEmail:  managerEmail,
		MemberEmails:  subservices.FilterMemberEmails(members),
		Type:          groupType,
		StartDate:     startDate,
		StartTime:     startTime,
		DurationDays:  days,
		DurationHours: hours,
		EndDate:       resolveEndDate(item, startDate, startTime, days, hours, now),
		CreatedAt:     resolveCreatedAt(item, now),
	}
}

func temporalFields(item map[string]any) (startDate, startTime string, days, hours int) {
	startDate, _ = item["startDate"].(string)
	startTime, _ = item["startTime"].(string)
	if startTime == "" {
		startTime = expiry.DefaultStartTime
	}
	days = expiry.CoerceInt(item["durationDays"])
	hours = expiry.CoerceInt(item["durationHours"])
	return startDate, startTime, days, hours
}

// resolveEndDate реализует цепочку из оригинального импорта: сохранённое
// значение, затем вывод из startDate, затем текущий момент.
// Значение endDate принимается и как полная отметка RFC3339, и как дата
// без времени.
func resolveEndDate(item map[string]any, startDate, startTime string, days, hours int, now time.Time) time.Time {
	if raw, ok := item["endDate"].(string); ok {
		for _, layout := range []string{time.RFC3339, "2006-01-02"} {
			if endDate, err := time.Parse(layout, raw); err == nil {
				return endDate
			}
		}
	}
	if startDate != "" {
		if endDate, err := expiry.ComputeEndDate(startDate, startTime, days, hours); err == nil {
			return endDate
		}
	}
	return now
}

func resolveCreatedAt(item map[string]any, now time.Time) time.Time {
	if raw, ok := item["createdAt"].(string); ok {
		if createdAt, err := time.Parse(time.RFC3339, raw); err == nil {
			return createdAt
		}
	}
	return now
}
