package model

// Slot вычисляемое окно для записи. Никогда не сохраняется в БД.
type Slot struct {
	Start TimeOfDay `json:"start_time"`
	End   TimeOfDay `json:"end_time"`
}

// Overlaps проверяет пересечение полуоткрытых интервалов [Start, End).
// Интервалы, которые только касаются границами, не пересекаются.
func (s Slot) Overlaps(other Slot) bool {
	return s.Start < other.End && s.End > other.Start
}

// Duration длительность слота в минутах
func (s Slot) Duration() int {
	return int(s.End - s.Start)
}

func (s Slot) String() string {
	return s.Start.String() + "-" + s.End.String()
}
