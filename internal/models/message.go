package models

// Button - кнопка inline клавиатуры
type Button struct {
	Text string
	Data string
}

// Keyboard - разметка исходящего сообщения.
// Используется не больше одного из Reply, Inline, Remove.
type Keyboard struct {
	Reply  [][]string
	Inline [][]Button
	Remove bool
}

// Photo - изображение для отправки: либо уже загруженный file id, либо байты
type Photo struct {
	FileID string
	Name   string
	Bytes  []byte
}
