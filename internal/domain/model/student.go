package model

// Student — запись студента в коллекции backend.
type Student struct {
	// ID — идентификатор, назначается backend при создании (nil у черновика)
	ID *int64 `json:"id,omitempty"`
	// Name — имя (2-100 символов, только буквы и пробелы)
	Name string `json:"name"`
	// Email — адрес почты (до 100 символов)
	Email string `json:"email"`
}

// StudentDraft — поля студента без идентификатора.
// Отправляется в теле POST /students и PUT /students/{id}.
type StudentDraft struct {
	Name  string `json:"name"  validate:"required,min=2,max=100,letters_spaces"`
	Email string `json:"email" validate:"required,email,max=100"`
}

// Persisted сообщает, сохранена ли запись в backend.
func (s Student) Persisted() bool {
	return s.ID != nil
}

// IDValue возвращает идентификатор или 0 для черновика.
func (s Student) IDValue() int64 {
	if s.ID == nil {
		return 0
	}
	return *s.ID
}

// Draft возвращает редактируемые поля записи.
func (s Student) Draft() StudentDraft {
	return StudentDraft{Name: s.Name, Email: s.Email}
}

// Int64Ptr возвращает указатель на значение.
func Int64Ptr(v int64) *int64 {
	return &v
}
