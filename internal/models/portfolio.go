package models

// Portfolio categories
const (
	CategoryCCTV  = "cctv"
	CategorySolar = "solar"
	CategoryFence = "fence"
	CategoryGate  = "gate"
	CategorySmart = "smart"
)

var PortfolioCategories = []string{CategoryCCTV, CategorySolar, CategoryFence, CategoryGate, CategorySmart}

// Portfolio is a showcased project. Lower Order sorts first.
type Portfolio struct {
	Base
	Title       string `gorm:"size:255;not null" json:"title"`
	Category    string `gorm:"size:20;not null;index" json:"category"`
	Description string `gorm:"type:text;not null" json:"description"`
	Image       string `gorm:"size:500;not null" json:"image"`
	Featured    bool   `gorm:"not null;default:false;index" json:"featured"`
	Order       int    `gorm:"column:display_order;not null;default:0" json:"order"`
}

// TableName keeps the singular table name used by the SQL migrations.
func (Portfolio) TableName() string { return "portfolio" }
