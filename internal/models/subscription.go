// Package models содержит доменные структуры, описывающие подписки,
// а также вспомогательные типы для приёма данных из JSON-запросов.
package models

import "time"

// Kind различает две логические коллекции записей.
type Kind string

const (
	// KindSingle — одиночная подписка на email.
	KindSingle Kind = "single"
	// KindFamily — семейная группа с управляющим email.
	KindFamily Kind = "family"
)

// KindFromQuery возвращает Kind по значению query-параметра type.
// Любое значение, кроме "family", трактуется как single.
func KindFromQuery(raw string) Kind {
	if raw == string(KindFamily) {
		return KindFamily
	}
	return KindSingle
}

// Subscription представляет собой одиночную подписку, используемую
// в бизнес-логике и хранилище. EndDate хранится денормализованно и
// пересчитывается при каждой записи из start_date + start_time + durations.
type Subscription struct {
	ID            string     `json:"id,omitempty"`   // Идентификатор, назначается хранилищем
	Email         string     `json:"email"`          // Email аккаунта
	StartDate     string     `json:"startDate"`      // Дата начала в формате 2006-01-02
	StartTime     string     `json:"startTime"`      // Время начала в формате 15:04
	DurationDays  int        `json:"durationDays"`   // Срок в днях
	DurationHours int        `json:"durationHours"`  // Срок в часах
	EndDate       time.Time  `json:"endDate"`        // Момент окончания, производное поле
	CreatedAt     time.Time  `json:"createdAt"`      // Момент создания записи
	RenewedAt     *time.Time `json:"renewedAt,omitempty"` // Момент последнего продления
}

// FamilyGroup представляет собой семейную группу подписок.
// Роль владельца играет ManagerEmail, участники хранятся списком до 5 адресов.
type FamilyGroup struct {
	ID            string     `json:"id,omitempty"`
	ManagerEmail  string     `json:"managerEmail"`
	MemberEmails  []string   `json:"memberEmails"`
	Type          string     `json:"type"` // regular или renewing
	StartDate     string     `json:"startDate"`
	StartTime     string     `json:"startTime"`
	DurationDays  int        `json:"durationDays"`
	DurationHours int        `json:"durationHours"`
	EndDate       time.Time  `json:"endDate"`
	CreatedAt     time.Time  `json:"createdAt"`
	RenewedAt     *time.Time `json:"renewedAt,omitempty"`
}

// GroupTypeRegular и GroupTypeRenewing — допустимые значения FamilyGroup.Type.
const (
	GroupTypeRegular  = "regular"
	GroupTypeRenewing = "renewing"
)

// SubscriptionView — запись одиночной подписки с производными полями
// для отображения, вычисляемыми на момент чтения.
type SubscriptionView struct {
	Subscription
	Status    string `json:"status"`
	Remaining string `json:"remaining"`
}

// FamilyGroupView — запись семейной группы с производными полями для отображения.
type FamilyGroupView struct {
	FamilyGroup
	Status    string `json:"status"`
	Remaining string `json:"remaining"`
}

// AllSubscriptions — агрегированный ответ по обеим коллекциям.
type AllSubscriptions struct {
	Single []SubscriptionView `json:"single"`
	Family []FamilyGroupView  `json:"family"`
}

// DummySubscription используется для приёма данных одиночной подписки из JSON-запроса,
// прежде чем конвертировать их в Subscription. Сроки приходят как произвольные
// JSON-значения, чтобы нечисловой ввод можно было привести к 0, а не отклонить.
type DummySubscription struct {
	Email         string `json:"email" validate:"required"`                          // Email аккаунта
	StartDate     string `json:"startDate" validate:"required,datetime=2006-01-02"`  // Дата начала
	StartTime     string `json:"startTime" validate:"omitempty,datetime=15:04"`      // Время начала, по умолчанию 00:00
	DurationDays  any    `json:"durationDays"`                                       // Срок в днях
	DurationHours any    `json:"durationHours"`                                      // Срок в часах
}

// DummyFamilyGroup используется для приёма данных семейной группы из JSON-запроса.
type DummyFamilyGroup struct {
	ManagerEmail  string   `json:"managerEmail" validate:"required"`
	MemberEmails  []string `json:"memberEmails" validate:"omitempty,max=5"`
	Type          string   `json:"type" validate:"omitempty,oneof=regular renewing"`
	StartDate     string   `json:"startDate" validate:"required,datetime=2006-01-02"`
	StartTime     string   `json:"startTime" validate:"omitempty,datetime=15:04"`
	DurationDays  any      `json:"durationDays"`
	DurationHours any      `json:"durationHours"`
}

// DummyUpdate — частичное обновление записи: отсутствующие поля (nil)
// не трогают сохранённые значения. Если присутствует хотя бы одно
// временное поле, endDate пересчитывается по объединённой записи.
type DummyUpdate struct {
	Email         *string   `json:"email"`
	ManagerEmail  *string   `json:"managerEmail"`
	MemberEmails  *[]string `json:"memberEmails"`
	Type          *string   `json:"type" validate:"omitempty,oneof=regular renewing"`
	StartDate     *string   `json:"startDate" validate:"omitempty,datetime=2006-01-02"`
	StartTime     *string   `json:"startTime" validate:"omitempty,datetime=15:04"`
	DurationDays  any       `json:"durationDays"`
	DurationHours any       `json:"durationHours"`
}

// HasTemporalField сообщает, затрагивает ли обновление временные поля записи.
func (u DummyUpdate) HasTemporalField() bool {
	return u.StartDate != nil || u.StartTime != nil ||
		u.DurationDays != nil || u.DurationHours != nil
}

// DummyRenew — запрос на продление: временные поля перезаписываются
// безусловно, срок по умолчанию 30 дней и 0 часов.
type DummyRenew struct {
	StartDate     string `json:"startDate" validate:"required,datetime=2006-01-02"`
	StartTime     string `json:"startTime" validate:"omitempty,datetime=15:04"`
	DurationDays  any    `json:"durationDays"`
	DurationHours any    `json:"durationHours"`
}

// RenewFields — вычисленные значения продления, передаваемые в хранилище.
type RenewFields struct {
	StartDate     string
	StartTime     string
	DurationDays  int
	DurationHours int
	EndDate       time.Time
	RenewedAt     time.Time
}

// UpdateResult — результат идемпотентного обновления: ноль совпавших
// строк означает "не найдено" и не является ошибкой.
type UpdateResult struct {
	Matched  int `json:"matched"`
	Modified int `json:"modified"`
}
