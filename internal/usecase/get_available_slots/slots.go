package get_available_slots

import (
	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// generateSlots перебирает кандидатов от открытия до (закрытие - длительность)
// включительно с шагом step и возвращает минуты начала свободных слотов.
//
// Кандидат [s, e) отбрасывается, если пересекается с перерывом или с активным
// бронированием. Пересечение полуоткрытое: s < otherEnd && e > otherStart,
// поэтому слот, заканчивающийся ровно в начале перерыва или брони, допустим.
func generateSlots(hours *domain.OperatingHours, bookings []*domain.Booking, duration, step int) []int {
	slots := make([]int, 0)
	if hours == nil || !hours.IsOpen || duration <= 0 || step <= 0 {
		return slots
	}

	window := hours.Window()
	for s := window.Start; s+duration <= window.End; s += step {
		candidate := domain.Interval{Start: s, End: s + duration}

		if !hours.Admits(candidate) {
			continue
		}
		if _, taken := domain.FirstOverlap(candidate, bookings); taken {
			continue
		}

		slots = append(slots, s)
	}

	return slots
}

// dropBefore убирает слоты, начинающиеся раньше earliest (минимальное время до записи)
func dropBefore(slots []int, earliest int) []int {
	result := make([]int, 0, len(slots))
	for _, s := range slots {
		if s >= earliest {
			result = append(result, s)
		}
	}
	return result
}
