package models

// AllModels lists every relational model for migration.
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&Post{},
		&Comment{},
		&Like{},
		&Follow{},
		&SavedPost{},
		&Message{},
		&Story{},
		&StoryView{},
		&Notification{},
	}
}
