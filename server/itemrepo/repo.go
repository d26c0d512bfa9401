package itemrepo

import "time"

type Item struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Owner       string    `json:"owner"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Repo interface {
	Create(item *Item) (*Item, error)
	Get(id int64) (*Item, error)
	List(owner string) ([]*Item, error)
	Update(item *Item) (*Item, error)
	Delete(id int64) error
}
