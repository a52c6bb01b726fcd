package scope

// Item wraps a value with the scope and file it was read from.
type Item[T any] struct {
	Value    T           `json:"value"`
	Scope    ConfigScope `json:"scope"`
	FilePath string      `json:"filePath"`
	Editable bool        `json:"editable"`
}

// NewItem builds an Item, computing Editable from the gate at read time.
func NewItem[T any](value T, s ConfigScope, filePath string, gate *Gate) Item[T] {
	return Item[T]{
		Value:    value,
		Scope:    s,
		FilePath: filePath,
		Editable: gate.Editable(s),
	}
}

// Ptr returns a pointer to a copy of the item, for optional surface fields.
func (i Item[T]) Ptr() *Item[T] {
	return &i
}
