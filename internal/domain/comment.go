package domain

import "time"

type Comment struct {
	ID                 string    `json:"id" bson:"_id"`
	ProductID          string    `json:"product_id" bson:"product_id"`
	AuthorID           string    `json:"author_id" bson:"author_id"`
	DisplayName        string    `json:"display_name" bson:"display_name"`
	Avatar             string    `json:"avatar,omitempty" bson:"avatar,omitempty"`
	Rating             int       `json:"rating" bson:"rating"`
	Body               string    `json:"body" bson:"body"`
	CreatedAt          time.Time `json:"created_at" bson:"created_at"`
	LikeCount          int       `json:"like_count" bson:"like_count"`
	LikedByCurrentUser bool      `json:"liked_by_current_user" bson:"liked_by_current_user"`
}

const (
	MinRating = 1
	MaxRating = 5
)

// ToggleLike flips the like flag and adjusts the count with it.
func (c Comment) ToggleLike() Comment {
	if c.LikedByCurrentUser {
		c.LikeCount--
		if c.LikeCount < 0 {
			c.LikeCount = 0
		}
	} else {
		c.LikeCount++
	}
	c.LikedByCurrentUser = !c.LikedByCurrentUser
	return c
}
