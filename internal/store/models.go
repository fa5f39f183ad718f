package store

import "time"

type Organization struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type User struct {
	ID             uint   `gorm:"primaryKey"`
	OrganizationID *uint  `gorm:"index"`
	Name           string `gorm:"not null"`
	Email          string `gorm:"uniqueIndex;not null"`
	Role           string `gorm:"not null;default:USER"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type Client struct {
	ID             uint   `gorm:"primaryKey"`
	OrganizationID *uint  `gorm:"index"`
	Name           string `gorm:"not null"`
	CPF            string `gorm:"column:cpf"`
	Phone          string
	Email          string
	Address        string
	City           string
	State          string
	ZipCode        string
	Observations   string
	Vehicles       []Vehicle `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type Vehicle struct {
	ID              uint   `gorm:"primaryKey"`
	ClientID        uint   `gorm:"index;not null"`
	LicensePlate    string `gorm:"index"`
	Brand           string
	Model           string
	ManufactureYear int
	Color           string
	Kilometers      int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type ServiceOrder struct {
	ID                  uint   `gorm:"primaryKey"`
	OrganizationID      *uint  `gorm:"index"`
	OrderNumber         string `gorm:"index"`
	ClientID            uint   `gorm:"index;not null"`
	VehicleID           uint   `gorm:"index;not null"`
	Description         string `gorm:"not null"`
	ProblemDescription  string
	ServiceType         string `gorm:"index;default:GENERAL"`
	TechnicianName      string `gorm:"index"`
	Status              string `gorm:"index;not null;default:PENDING"`
	CurrentKilometers   int
	LaborCost           float64
	PartsCost           float64
	Discount            float64
	TotalCost           float64
	EstimatedCompletion *time.Time
	CompletedAt         *time.Time
	Items               []ServiceOrderItem `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

type ServiceOrderItem struct {
	ID             uint   `gorm:"primaryKey"`
	ServiceOrderID uint   `gorm:"index;not null"`
	ProductCode    string `gorm:"not null"`
	Description    string
	Type           string  `gorm:"default:PART"`
	Quantity       int     `gorm:"not null"`
	UnitPrice      float64 `gorm:"not null"`
	TotalPrice     float64
	CreatedAt      time.Time
}

type Part struct {
	ID           uint   `gorm:"primaryKey"`
	Name         string `gorm:"not null"`
	SKU          string `gorm:"column:sku;uniqueIndex;not null"`
	Category     string `gorm:"index"`
	Brand        string
	Model        string
	Description  string
	SupplierInfo string
	UnitCost     float64
	SalePrice    float64
	Markup       float64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type InventoryItem struct {
	ID             uint   `gorm:"primaryKey"`
	PartID         uint   `gorm:"index;not null"`
	Location       string `gorm:"not null"`
	Quantity       int    `gorm:"not null"`
	MinimumStock   int
	UnitCost       float64
	SalePrice      float64
	LastMovementAt *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type InventoryMovement struct {
	ID              uint   `gorm:"primaryKey"`
	InventoryItemID uint   `gorm:"index;not null"`
	ServiceOrderID  *uint  `gorm:"index"`
	MovementType    string `gorm:"not null"`
	Quantity        int    `gorm:"not null"`
	Reason          string
	CreatedAt       time.Time
}

// Conversation owns an ordered transcript keyed by its public thread id.
type Conversation struct {
	ID        uint      `gorm:"primaryKey"`
	ThreadID  string    `gorm:"uniqueIndex;not null"`
	UserID    string    `gorm:"index"`
	Messages  []Message `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
}

// Message rows are ordered by ID, which follows insertion order.
type Message struct {
	ID             uint   `gorm:"primaryKey"`
	ConversationID uint   `gorm:"index;not null"`
	Role           string `gorm:"not null"`
	Content        string `gorm:"type:text;not null"`
	CreatedAt      time.Time
}

// AllModels lists every entity in migration order.
func AllModels() []any {
	return []any{
		&Organization{},
		&User{},
		&Client{},
		&Vehicle{},
		&ServiceOrder{},
		&ServiceOrderItem{},
		&Part{},
		&InventoryItem{},
		&InventoryMovement{},
		&Conversation{},
		&Message{},
	}
}

// ExpectedTables are the tables /status reports on.
var ExpectedTables = []string{
	"organizations",
	"users",
	"clients",
	"vehicles",
	"service_orders",
	"service_order_items",
	"parts",
	"inventory_items",
	"inventory_movements",
	"conversations",
	"messages",
}

// QueryableTables are the only tables generated SQL may read from.
var QueryableTables = []string{
	"clients",
	"vehicles",
	"service_orders",
	"service_order_items",
	"parts",
	"inventory_items",
	"inventory_movements",
}
