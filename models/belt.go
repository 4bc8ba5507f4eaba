package models

// Belt is a ranked membership tier. Order is the sole ranking key:
// a promotion is only ever to a belt with a strictly greater order.
type Belt struct {
	ID    string `json:"id" gorm:"primaryKey"`
	Name  string `json:"name" gorm:"not null"`
	Color string `json:"color" gorm:"default:'#000000'"`
	Order int    `json:"order" gorm:"column:sort_order;uniqueIndex;not null"`
}
