package domain

import "time"

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Favorites    []string  `json:"favorites"`
	CreatedAt    time.Time `json:"created_at"`
}

// HasFavorite compara por igualdad exacta de strings, sin normalizar
// mayusculas ni espacios.
func (u User) HasFavorite(location string) bool {
	for _, fav := range u.Favorites {
		if fav == location {
			return true
		}
	}
	return false
}
