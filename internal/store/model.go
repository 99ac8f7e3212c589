package store

// Product represents a catalog entry as it is persisted.
// The same shape is written to the flat JSON document (json tags)
// and to the mongo collection (bson tags, with the id stored as _id
// so the collection enforces uniqueness by construction).
type Product struct {
	ID           string  `json:"id" bson:"_id"`
	Name         string  `json:"name" bson:"name"`
	Description  string  `json:"description" bson:"description"`
	Code         string  `json:"code" bson:"code"`
	Price        float64 `json:"price" bson:"price"`
	Stock        int     `json:"stock" bson:"stock"`
	Category     string  `json:"category" bson:"category"`
	Availability string  `json:"availability" bson:"availability"`
	Thumbnail    string  `json:"thumbnail,omitempty" bson:"thumbnail,omitempty"`
}
