// Package services содержит бизнес-логику жизненного цикла подписок:
// вычисление даты окончания, создание, частичное обновление, продление,
// удаление и агрегированное чтение обеих коллекций с кешированием.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/subscription-tracker/internal/lib/expiry"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

// ErrEmptyEmail возвращается при попытке создать одиночную подписку без email.
var ErrEmptyEmail = errors.New("email is required")

// ErrEmptyManagerEmail возвращается при попытке создать семейную группу без managerEmail.
var ErrEmptyManagerEmail = errors.New("managerEmail is required")

// ListCacheKey — ключ кеша агрегированного списка обеих коллекций.
const ListCacheKey = "subscriptions:all"

// listCacheTTL совпадает с периодом обновления дашборда.
const listCacheTTL = time.Minute

// maxFamilyMembers ограничивает размер семейной группы.
const maxFamilyMembers = 5

// RenewDefaultDays — срок продления по умолчанию, когда клиент его не передал.
const RenewDefaultDays = 30

// SubscriptionRepository определяет методы для работы с подписками в хранилище.
type SubscriptionRepository interface {
	// CreateSingle добавляет одиночную подписку и возвращает её ID.
	CreateSingle(ctx context.Context, sub models.Subscription) (string, error)
	// CreateFamily добавляет семейную группу и возвращает её ID.
	CreateFamily(ctx context.Context, group models.FamilyGroup) (string, error)
	// GetSingle возвращает одиночную подписку по ID.
	GetSingle(ctx context.Context, id uuid.UUID) (*models.Subscription, error)
	// GetFamily возвращает семейную группу по ID.
	GetFamily(ctx context.Context, id uuid.UUID) (*models.FamilyGroup, error)
	// ListSingle возвращает все одиночные подписки.
	ListSingle(ctx context.Context) ([]*models.Subscription, error)
	// ListFamily возвращает все семейные группы.
	ListFamily(ctx context.Context) ([]*models.FamilyGroup, error)
	// UpdateSingle перезаписывает одиночную подписку, возвращает число изменённых строк.
	UpdateSingle(ctx context.Context, id uuid.UUID, sub models.Subscription) (int, error)
	// UpdateFamily перезаписывает семейную группу, возвращает число изменённых строк.
	UpdateFamily(ctx context.Context, id uuid.UUID, group models.FamilyGroup) (int, error)
	// RenewSingle перезаписывает временные поля одиночной подписки.
	RenewSingle(ctx context.Context, id uuid.UUID, fields models.RenewFields) (int, error)
	// RenewFamily перезаписывает временные поля семейной группы.
	RenewFamily(ctx context.Context, id uuid.UUID, fields models.RenewFields) (int, error)
	// RemoveSingle удаляет одиночную подписку, возвращает число удалённых строк.
	RemoveSingle(ctx context.Context, id uuid.UUID) (int, error)
	// RemoveFamily удаляет семейную группу, возвращает число удалённых строк.
	RemoveFamily(ctx context.Context, id uuid.UUID) (int, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(key string, value any, expiration time.Duration) error
	// Invalidate удаляет значение из кеша по ключу.
	Invalidate(key string) error
}

// SubscriptionService реализует бизнес-логику работы с подписками.
type SubscriptionService struct {
	repo      SubscriptionRepository
	cache     Cache
	log       *slog.Logger
	threshold time.Duration
}

// NewSubscriptionService создает новый экземпляр SubscriptionService.
// threshold — порог статуса Expiring, нулевое значение заменяется на 7 дней.
func NewSubscriptionService(repo SubscriptionRepository, cache Cache, log *slog.Logger, threshold time.Duration) *SubscriptionService {
	if threshold <= 0 {
		threshold = expiry.DefaultThreshold
	}
	return &SubscriptionService{
		repo:      repo,
		cache:     cache,
		log:       log,
		threshold: threshold,
	}
}

// rawLists — сырое содержимое обеих коллекций, именно оно кешируется.
// Производные поля статуса пересчитываются на каждое чтение.
type rawLists struct {
	Single []*models.Subscription `json:"single"`
	Family []*models.FamilyGroup  `json:"family"`
}

// CreateSingle создает новую одиночную подписку и возвращает сохранённую запись.
func (s *SubscriptionService) CreateSingle(ctx context.Context, req models.DummySubscription) (*models.Subscription, error) {
	if req.Email == "" {
		return nil, ErrEmptyEmail
	}

	startTime := req.StartTime
	if startTime == "" {
		startTime = expiry.DefaultStartTime
	}
	days := expiry.CoerceInt(req.DurationDays)
	hours := expiry.CoerceInt(req.DurationHours)

	endDate, err := expiry.ComputeEndDate(req.StartDate, startTime, days, hours)
	if err != nil {
		return nil, fmt.Errorf("invalid start date: %w", err)
	}

	sub := models.Subscription{
		Email:         req.Email,
		StartDate:     req.StartDate,
		StartTime:     startTime,
		DurationDays:  days,
		DurationHours: hours,
		EndDate:       endDate,
		CreatedAt:     time.Now().UTC(),
	}

	id, err := s.repo.CreateSingle(ctx, sub)
	if err != nil {
		return nil, err
	}
	sub.ID = id

	s.log.Info("created new single subscription", slog.String("id", id))
	s.invalidateList()

	return &sub, nil
}

// CreateFamily создает новую семейную группу и возвращает сохранённую запись.
// Пустые адреса участников отфильтровываются, список усекается до пяти.
func (s *SubscriptionService) CreateFamily(ctx context.Context, req models.DummyFamilyGroup) (*models.FamilyGroup, error) {
	if req.ManagerEmail == "" {
		return nil, ErrEmptyManagerEmail
	}

	startTime := req.StartTime
	if startTime == "" {
		startTime = expiry.DefaultStartTime
	}
	days := expiry.CoerceInt(req.DurationDays)
	hours := expiry.CoerceInt(req.DurationHours)

	endDate, err := expiry.ComputeEndDate(req.StartDate, startTime, days, hours)
	if err != nil {
		return nil, fmt.Errorf("invalid start date: %w", err)
	}

	groupType := req.Type
	if groupType == "" {
		groupType = models.GroupTypeRegular
	}

	group := models.FamilyGroup{
		ManagerEmail:  req.ManagerEmail,
		MemberEmails:  FilterMemberEmails(req.MemberEmails),
		Type:          groupType,
		StartDate:     req.StartDate,
		StartTime:     startTime,
		DurationDays:  days,
		DurationHours: hours,
		EndDate:       endDate,
		CreatedAt:     time.Now().UTC(),
	}

	id, err := s.repo.CreateFamily(ctx, group)
	if err != nil {
		return nil, err
	}
	group.ID = id

	s.log.Info("created new family group", slog.String("id", id))
	s.invalidateList()

	return &group, nil
}

// ListAll возвращает обе коллекции с производными полями статуса.
// Сырые списки берутся из кеша, статусы пересчитываются на момент вызова.
func (s *SubscriptionService) ListAll(ctx context.Context) (*models.AllSubscriptions, error) {
	var raw rawLists

	found, err := s.cache.Get(ListCacheKey, &raw)
	if err != nil {
		s.log.Warn("failed to read list from cache", slog.Any("err", err))
		found = false
	}
	if !found {
		single, err := s.repo.ListSingle(ctx)
		if err != nil {
			return nil, err
		}
		family, err := s.repo.ListFamily(ctx)
		if err != nil {
			return nil, err
		}
		raw = rawLists{Single: single, Family: family}

		if err := s.cache.Set(ListCacheKey, raw, listCacheTTL); err != nil {
			s.log.Warn("failed to cache list", slog.Any("err", err))
		}
	}

	now := time.Now().UTC()
	result := &models.AllSubscriptions{
		Single: make([]models.SubscriptionView, 0, len(raw.Single)),
		Family: make([]models.FamilyGroupView, 0, len(raw.Family)),
	}
	for _, sub := range raw.Single {
		result.Single = append(result.Single, models.SubscriptionView{
			Subscription: *sub,
			Status:       string(expiry.Classify(now, sub.EndDate, s.threshold)),
			Remaining:    expiry.FormatRemaining(now, sub.EndDate),
		})
	}
	for _, group := range raw.Family {
		result.Family = append(result.Family, models.FamilyGroupView{
			FamilyGroup: *group,
			Status:      string(expiry.Classify(now, group.EndDate, s.threshold)),
			Remaining:   expiry.FormatRemaining(now, group.EndDate),
		})
	}
	return result, nil
}

// ListFamily возвращает только семейные группы с производными полями статуса.
func (s *SubscriptionService) ListFamily(ctx context.Context) ([]models.FamilyGroupView, error) {
	family, err := s.repo.ListFamily(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	result := make([]models.FamilyGroupView, 0, len(family))
	for _, group := range family {
		result = append(result, models.FamilyGroupView{
			FamilyGroup: *group,
			Status:      string(expiry.Classify(now, group.EndDate, s.threshold)),
			Remaining:   expiry.FormatRemaining(now, group.EndDate),
		})
	}
	return result, nil
}

// Update применяет частичное обновление к записи указанной коллекции.
// Невалидный или несуществующий идентификатор даёт нулевой результат без ошибки.
// При изменении временных полей endDate пересчитывается по объединённой записи.
func (s *SubscriptionService) Update(ctx context.Context, kind models.Kind, rawID string, req models.DummyUpdate) (*models.UpdateResult, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return &models.UpdateResult{}, nil
	}

	var affected int
	switch kind {
	case models.KindFamily:
		affected, err = s.updateFamily(ctx, id, req)
	default:
		affected, err = s.updateSingle(ctx, id, req)
	}
	if err != nil {
		return nil, err
	}

	if affected > 0 {
		s.invalidateList()
	}
	return &models.UpdateResult{Matched: affected, Modified: affected}, nil
}

func (s *SubscriptionService) updateSingle(ctx context.Context, id uuid.UUID, req models.DummyUpdate) (int, error) {
	existing, err := s.repo.GetSingle(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	merged := *existing
	if req.Email != nil {
		merged.Email = *req.Email
	}
	if req.StartDate != nil {
		merged.StartDate = *req.StartDate
	}
	if req.StartTime != nil {
		merged.StartTime = *req.StartTime
	}
	if req.DurationDays != nil {
		merged.DurationDays = expiry.CoerceInt(req.DurationDays)
	}
	if req.DurationHours != nil {
		merged.DurationHours = expiry.CoerceInt(req.DurationHours)
	}
	if req.HasTemporalField() {
		endDate, err := expiry.ComputeEndDate(merged.StartDate, merged.StartTime, merged.DurationDays, merged.DurationHours)
		if err != nil {
			return 0, fmt.Errorf("invalid start date: %w", err)
		}
		merged.EndDate = endDate
	}

	return s.repo.UpdateSingle(ctx, id, merged)
}

func (s *SubscriptionService) updateFamily(ctx context.Context, id uuid.UUID, req models.DummyUpdate) (int, error) {
	existing, err := s.repo.GetFamily(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	merged := *existing
	if req.ManagerEmail != nil {
		merged.ManagerEmail = *req.ManagerEmail
	}
	if req.MemberEmails != nil {
		merged.MemberEmails = FilterMemberEmails(*req.MemberEmails)
	}
	if req.Type != nil {
		merged.Type = *req.Type
	}
	if req.StartDate != nil {
		merged.StartDate = *req.StartDate
	}
	if req.StartTime != nil {
		merged.StartTime = *req.StartTime
	}
	if req.DurationDays != nil {
		merged.DurationDays = expiry.CoerceInt(req.DurationDays)
	}
	if req.DurationHours != nil {
		merged.DurationHours = expiry.CoerceInt(req.DurationHours)
	}
	if req.HasTemporalField() {
		endDate, err := expiry.ComputeEndDate(merged.StartDate, merged.StartTime, merged.DurationDays, merged.DurationHours)
		if err != nil {
			return 0, fmt.Errorf("invalid start date: %w", err)
		}
		merged.EndDate = endDate
	}

	return s.repo.UpdateFamily(ctx, id, merged)
}

// Renew безусловно перезаписывает временные поля записи, пересчитывает endDate
// и проставляет renewedAt. Срок по умолчанию — 30 дней и 0 часов.
func (s *SubscriptionService) Renew(ctx context.Context, kind models.Kind, rawID string, req models.DummyRenew) (*models.UpdateResult, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return &models.UpdateResult{}, nil
	}

	startTime := req.StartTime
	if startTime == "" {
		startTime = expiry.DefaultStartTime
	}
	days := expiry.CoerceIntDefault(req.DurationDays, RenewDefaultDays)
	hours := expiry.CoerceIntDefault(req.DurationHours, 0)

	endDate, err := expiry.ComputeEndDate(req.StartDate, startTime, days, hours)
	if err != nil {
		return nil, fmt.Errorf("invalid start date: %w", err)
	}

	fields := models.RenewFields{
		StartDate:     req.StartDate,
		StartTime:     startTime,
		DurationDays:  days,
		DurationHours: hours,
		EndDate:       endDate,
		RenewedAt:     time.Now().UTC(),
	}

	var affected int
	switch kind {
	case models.KindFamily:
		affected, err = s.repo.RenewFamily(ctx, id, fields)
	default:
		affected, err = s.repo.RenewSingle(ctx, id, fields)
	}
	if err != nil {
		return nil, err
	}

	if affected > 0 {
		s.log.Info("renewed subscription", slog.String("id", rawID), slog.String("kind", string(kind)))
		s.invalidateList()
	}
	return &models.UpdateResult{Matched: affected, Modified: affected}, nil
}

// Remove удаляет запись указанной коллекции. Невалидный или несуществующий
// идентификатор даёт нулевой результат без ошибки.
func (s *SubscriptionService) Remove(ctx context.Context, kind models.Kind, rawID string) (int, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return 0, nil
	}

	var affected int
	switch kind {
	case models.KindFamily:
		affected, err = s.repo.RemoveFamily(ctx, id)
	default:
		affected, err = s.repo.RemoveSingle(ctx, id)
	}
	if err != nil {
		return 0, err
	}

	if affected > 0 {
		s.invalidateList()
	}
	return affected, nil
}

func (s *SubscriptionService) invalidateList() {
	if err := s.cache.Invalidate(ListCacheKey); err != nil {
		s.log.Warn("failed to invalidate list cache", slog.Any("err", err))
	}
}

// FilterMemberEmails убирает пустые строки из списка участников
// и усекает его до пяти адресов.
func FilterMemberEmails(emails []string) []string {
	result := make([]string, 0, len(emails))
	for _, email := range emails {
		if email == "" {
			continue
		}
		result = append(result, email)
	}
	if len(result) > maxFamilyMembers {
		result = result[:maxFamilyMembers]
	}
	return result
}
