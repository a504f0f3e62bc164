package expiry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeEndDate(t *testing.T) {
	tests := []struct {
		name      string
		startDate string
		startTime string
		days      int
		hours     int
		want      time.Time
		wantErr   bool
	}{
		{
			name:      "30 календарных дней от начала января",
			startDate: "2024-01-01",
			startTime: "00:00",
			days:      30,
			want:      time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "дни и часы складываются",
			startDate: "2024-03-10",
			startTime: "12:30",
			days:      1,
			hours:     5,
			want:      time.Date(2024, 3, 11, 17, 30, 0, 0, time.UTC),
		},
		{
			name:      "пустое время начала трактуется как полночь",
			startDate: "2024-06-15",
			startTime: "",
			days:      7,
			want:      time.Date(2024, 6, 22, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "переход через границу месяца",
			startDate: "2024-01-31",
			startTime: "00:00",
			days:      1,
			want:      time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "нулевой срок возвращает момент начала",
			startDate: "2024-05-05",
			startTime: "09:15",
			want:      time.Date(2024, 5, 5, 9, 15, 0, 0, time.UTC),
		},
		{
			name:      "невалидная дата начала",
			startDate: "not-a-date",
			startTime: "00:00",
			days:      30,
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeEndDate(tt.startDate, tt.startTime, tt.days, tt.hours)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestClassify(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		end  time.Time
		want Status
	}{
		{
			name: "окончание в прошлом",
			end:  now.Add(-time.Hour),
			want: StatusExpired,
		},
		{
			name: "окончание совпадает с текущим моментом",
			end:  now,
			want: StatusExpired,
		},
		{
			name: "окончание внутри порога",
			end:  now.Add(3 * 24 * time.Hour),
			want: StatusExpiring,
		},
		{
			name: "окончание на секунду раньше порога",
			end:  now.Add(DefaultThreshold - time.Second),
			want: StatusExpiring,
		},
		{
			name: "окончание ровно на пороге",
			end:  now.Add(DefaultThreshold),
			want: StatusActive,
		},
		{
			name: "окончание далеко в будущем",
			end:  now.Add(30 * 24 * time.Hour),
			want: StatusActive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(now, tt.end, DefaultThreshold))
		})
	}
}

func TestFormatRemaining(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		end  time.Time
		want string
	}{
		{
			name: "истёкшая запись",
			end:  now.Add(-time.Minute),
			want: "Expired",
		},
		{
			name: "полный набор компонентов",
			end:  now.Add(2*24*time.Hour + 5*time.Hour + 30*time.Minute + 12*time.Second),
			want: "2d 5h 30m 12s",
		},
		{
			name: "меньше суток",
			end:  now.Add(3*time.Hour + 4*time.Minute + 5*time.Second),
			want: "0d 3h 4m 5s",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatRemaining(now, tt.end))
		})
	}
}

func TestCoerceInt(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want int
	}{
		{name: "nil даёт ноль", in: nil, want: 0},
		{name: "целое число", in: 14, want: 14},
		{name: "число из JSON", in: float64(30), want: 30},
		{name: "числовая строка", in: "45", want: 45},
		{name: "строка с пробелами", in: " 7 ", want: 7},
		{name: "нечисловая строка даёт ноль", in: "abc", want: 0},
		{name: "отрицательное значение даёт ноль", in: -5, want: 0},
		{name: "неожиданный тип даёт ноль", in: []string{"30"}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CoerceInt(tt.in))
		})
	}
}

func TestCoerceIntDefault(t *testing.T) {
	tests := []struct {
		name string
		in   any
		def  int
		want int
	}{
		{name: "nil заменяется на значение по умолчанию", in: nil, def: 30, want: 30},
		{name: "присутствующее значение сохраняется", in: float64(14), def: 30, want: 14},
		{name: "нечисловая строка даёт ноль, а не значение по умолчанию", in: "abc", def: 30, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CoerceIntDefault(tt.in, tt.def))
		})
	}
}
