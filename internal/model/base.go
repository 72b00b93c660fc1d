package model

import "time"

// BaseModel holds the store-owned fields of every record. Both are assigned by the
// entity store on create and ignored on writes.
type BaseModel struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
}
