package database

import "gighub/internal/models"

// PersistentModels lists every model AutoMigrate manages, in dependency order.
func PersistentModels() []any {
	return []any{
		&models.User{},
		&models.Post{},
		&models.Offer{},
		&models.UserPostLink{},
	}
}
