package db

import (
	"github.com/rs/zerolog/log"

	"github.com/minaret-app/minaret/internal/model"
)

func (s *pgStore) CreateUser(email, hashedPassword string, name *string) (int, error) {
	var id int
	const q = `
	INSERT INTO users (email, hashed_password, name, created_at, updated_at)
	VALUES ($1, $2, $3, now(), now())
	RETURNING id;`
	if err := s.db.Get(&id, q, email, hashedPassword, name); err != nil {
		log.Error().Err(err).Msg("CreateUser failed")
		return 0, err
	}
	return id, nil
}

func (s *pgStore) GetUserByEmail(email string) (*model.User, error) {
	var u model.User
	const q = `
	SELECT id, email, hashed_password, name, latitude, longitude, created_at, updated_at
	  FROM users
	 WHERE email = $1;`
	if err := s.db.Get(&u, q, email); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *pgStore) GetUserByID(id int) (*model.User, error) {
	var u model.User
	const q = `
	SELECT id, email, hashed_password, name, latitude, longitude, created_at, updated_at
	  FROM users
	 WHERE id = $1;`
	if err := s.db.Get(&u, q, id); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *pgStore) UpdateUserProfile(id int, email string, name *string) error {
	_, err := s.db.Exec(`
	UPDATE users SET email = $2, name = $3, updated_at = now() WHERE id = $1;`, id, email, name)
	if err != nil {
		log.Error().Err(err).Int("user_id", id).Msg("UpdateUserProfile failed")
	}
	return err
}

func (s *pgStore) UpdateUserLocation(id int, latitude, longitude float64) error {
	_, err := s.db.Exec(`
	UPDATE users SET latitude = $2, longitude = $3, updated_at = now() WHERE id = $1;`, id, latitude, longitude)
	if err != nil {
		log.Error().Err(err).Int("user_id", id).Msg("UpdateUserLocation failed")
	}
	return err
}

func (s *pgStore) ListUserIDs() ([]int, error) {
	var ids []int
	if err := s.db.Select(&ids, `SELECT id FROM users ORDER BY id;`); err != nil {
		log.Error().Err(err).Msg("ListUserIDs failed")
		return nil, err
	}
	return ids, nil
}
