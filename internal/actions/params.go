package actions

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// Params is the typed parameter set of one catalog command.
type Params interface {
	Command() string
	// Values returns only the parameters that were supplied and valid.
	Values() map[string]any
}

type CreateClientParams struct {
	Name         *string
	CPF          *string
	Phone        *string
	Email        *string
	Address      *string
	City         *string
	State        *string
	ZipCode      *string
	Observations *string
}

func (CreateClientParams) Command() string { return "create_client" }

func (p CreateClientParams) Values() map[string]any {
	v := map[string]any{}
	set(v, "name", p.Name)
	set(v, "cpf", p.CPF)
	set(v, "phone", p.Phone)
	set(v, "email", p.Email)
	set(v, "address", p.Address)
	set(v, "city", p.City)
	set(v, "state", p.State)
	set(v, "zipCode", p.ZipCode)
	set(v, "observations", p.Observations)
	return v
}

type CreateServiceOrderParams struct {
	VehicleID           *int64
	ClientID            *int64
	Description         *string
	ProblemDescription  *string
	TechnicianName      *string
	CurrentKilometers   *int64
	EstimatedCompletion *string
	Observations        *string
	LaborCost           *float64
	PartsCost           *float64
	Discount            *float64
}

func (CreateServiceOrderParams) Command() string { return "create_service_order" }

func (p CreateServiceOrderParams) Values() map[string]any {
	v := map[string]any{}
	set(v, "vehicleId", p.VehicleID)
	set(v, "clientId", p.ClientID)
	set(v, "description", p.Description)
	set(v, "problemDescription", p.ProblemDescription)
	set(v, "technicianName", p.TechnicianName)
	set(v, "currentKilometers", p.CurrentKilometers)
	set(v, "estimatedCompletion", p.EstimatedCompletion)
	set(v, "observations", p.Observations)
	set(v, "laborCost", p.LaborCost)
	set(v, "partsCost", p.PartsCost)
	set(v, "discount", p.Discount)
	return v
}

type UpdateServiceOrderStatusParams struct {
	ID           *int64
	Status       *string
	Observations *string
}

func (UpdateServiceOrderStatusParams) Command() string { return "update_service_order_status" }

func (p UpdateServiceOrderStatusParams) Values() map[string]any {
	v := map[string]any{}
	set(v, "id", p.ID)
	set(v, "status", p.Status)
	set(v, "observations", p.Observations)
	return v
}

type CreateInventoryItemParams struct {
	PartID       *int64
	Location     *string
	Quantity     *int64
	UnitCost     *float64
	SalePrice    *float64
	MinimumStock *int64
	Observations *string
}

func (CreateInventoryItemParams) Command() string { return "create_inventory_item" }

func (p CreateInventoryItemParams) Values() map[string]any {
	v := map[string]any{}
	set(v, "partId", p.PartID)
	set(v, "location", p.Location)
	set(v, "quantity", p.Quantity)
	set(v, "unitCost", p.UnitCost)
	set(v, "salePrice", p.SalePrice)
	set(v, "minimumStock", p.MinimumStock)
	set(v, "observations", p.Observations)
	return v
}

type CreatePartParams struct {
	Name         *string
	SKU          *string
	Category     *string
	Brand        *string
	Model        *string
	Description  *string
	SupplierInfo *string
	UnitCost     *float64
	SalePrice    *float64
	Markup       *float64
}

func (CreatePartParams) Command() string { return "create_part" }

func (p CreatePartParams) Values() map[string]any {
	v := map[string]any{}
	set(v, "name", p.Name)
	set(v, "sku", p.SKU)
	set(v, "category", p.Category)
	set(v, "brand", p.Brand)
	set(v, "model", p.Model)
	set(v, "description", p.Description)
	set(v, "supplierInfo", p.SupplierInfo)
	set(v, "unitCost", p.UnitCost)
	set(v, "salePrice", p.SalePrice)
	set(v, "markup", p.Markup)
	return v
}

type AddItemToServiceOrderParams struct {
	ServiceOrderID *int64
	ProductCode    *string
	Quantity       *int64
	UnitPrice      *float64
	Description    *string
	Type           *string
}

func (AddItemToServiceOrderParams) Command() string { return "add_item_to_service_order" }

func (p AddItemToServiceOrderParams) Values() map[string]any {
	v := map[string]any{}
	set(v, "serviceOrderId", p.ServiceOrderID)
	set(v, "productCode", p.ProductCode)
	set(v, "quantity", p.Quantity)
	set(v, "unitPrice", p.UnitPrice)
	set(v, "description", p.Description)
	set(v, "type", p.Type)
	return v
}

type paramSchema struct {
	fields []string
	decode func(d *decoder) Params
}

var paramSchemas = map[string]paramSchema{
	"create_client": {
		fields: []string{"name", "cpf", "phone", "email", "address", "city", "state", "zipCode", "observations"},
		decode: func(d *decoder) Params {
			return CreateClientParams{
				Name: d.str("name"), CPF: d.str("cpf"), Phone: d.str("phone"), Email: d.str("email"),
				Address: d.str("address"), City: d.str("city"), State: d.str("state"),
				ZipCode: d.str("zipCode"), Observations: d.str("observations"),
			}
		},
	},
	"create_service_order": {
		fields: []string{"vehicleId", "clientId", "description", "problemDescription", "technicianName", "currentKilometers", "estimatedCompletion", "observations", "laborCost", "partsCost", "discount"},
		decode: func(d *decoder) Params {
			return CreateServiceOrderParams{
				VehicleID: d.integer("vehicleId"), ClientID: d.integer("clientId"), Description: d.str("description"),
				ProblemDescription: d.str("problemDescription"), TechnicianName: d.str("technicianName"),
				CurrentKilometers: d.integer("currentKilometers"), EstimatedCompletion: d.str("estimatedCompletion"),
				Observations: d.str("observations"), LaborCost: d.decimal("laborCost"),
				PartsCost: d.decimal("partsCost"), Discount: d.decimal("discount"),
			}
		},
	},
	"update_service_order_status": {
		fields: []string{"id", "status", "observations"},
		decode: func(d *decoder) Params {
			return UpdateServiceOrderStatusParams{ID: d.integer("id"), Status: d.str("status"), Observations: d.str("observations")}
		},
	},
	"create_inventory_item": {
		fields: []string{"partId", "location", "quantity", "unitCost", "salePrice", "minimumStock", "observations"},
		decode: func(d *decoder) Params {
			return CreateInventoryItemParams{
				PartID: d.integer("partId"), Location: d.str("location"), Quantity: d.integer("quantity"),
				UnitCost: d.decimal("unitCost"), SalePrice: d.decimal("salePrice"),
				MinimumStock: d.integer("minimumStock"), Observations: d.str("observations"),
			}
		},
	},
	"create_part": {
		fields: []string{"name", "sku", "category", "brand", "model", "description", "supplierInfo", "unitCost", "salePrice", "markup"},
		decode: func(d *decoder) Params {
			return CreatePartParams{
				Name: d.str("name"), SKU: d.str("sku"), Category: d.str("category"), Brand: d.str("brand"),
				Model: d.str("model"), Description: d.str("description"), SupplierInfo: d.str("supplierInfo"),
				UnitCost: d.decimal("unitCost"), SalePrice: d.decimal("salePrice"), Markup: d.decimal("markup"),
			}
		},
	},
	"add_item_to_service_order": {
		fields: []string{"serviceOrderId", "productCode", "quantity", "unitPrice", "description", "type"},
		decode: func(d *decoder) Params {
			return AddItemToServiceOrderParams{
				ServiceOrderID: d.integer("serviceOrderId"), ProductCode: d.str("productCode"),
				Quantity: d.integer("quantity"), UnitPrice: d.decimal("unitPrice"),
				Description: d.str("description"), Type: d.str("type"),
			}
		},
	},
}

// Decoded is the outcome of validating raw parameters for a command.
type Decoded struct {
	Params  Params
	Invalid []string // supplied but not convertible to the field type
	Unknown []string // not part of the command's schema

	// Raw holds the Invalid values exactly as supplied.
	Raw map[string]any
}

// Values merges the typed parameters with the raw values that could not be
// converted, so a supplied field never reads as missing.
func (d Decoded) Values() map[string]any {
	values := d.Params.Values()
	for k, v := range d.Raw {
		if _, ok := values[k]; !ok {
			values[k] = v
		}
	}
	return values
}

// DecodeParams enriches raw values and binds them to the command's typed
// parameter struct. ok is false when the command has no schema.
func DecodeParams(command string, raw map[string]any) (Decoded, bool) {
	schema, ok := paramSchemas[command]
	if !ok {
		return Decoded{}, false
	}
	d := &decoder{raw: Enrich(raw), kept: map[string]any{}}
	params := schema.decode(d)

	known := make(map[string]bool, len(schema.fields))
	for _, f := range schema.fields {
		known[f] = true
	}
	var unknown []string
	for key := range d.raw {
		if !known[key] {
			unknown = append(unknown, key)
		}
	}
	sort.Strings(unknown)
	sort.Strings(d.invalid)
	return Decoded{Params: params, Invalid: d.invalid, Unknown: unknown, Raw: d.kept}, true
}

// Missing lists required parameters absent from values, in catalog order.
func Missing(cmd Command, values map[string]any) []string {
	missing := []string{}
	for _, name := range cmd.Required {
		if _, ok := values[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

type decoder struct {
	raw     map[string]any
	kept    map[string]any
	invalid []string
}

// keep records a value that does not fit its field. Nil counts as absent.
func (d *decoder) keep(key string, v any) {
	if v == nil {
		return
	}
	d.invalid = append(d.invalid, key)
	d.kept[key] = v
}

func (d *decoder) str(key string) *string {
	v, ok := d.raw[key]
	if !ok {
		return nil
	}
	var s string
	switch t := v.(type) {
	case string:
		s = strings.TrimSpace(t)
	case int64:
		s = strconv.FormatInt(t, 10)
	case float64:
		s = strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		s = strconv.FormatBool(t)
	default:
		d.keep(key, v)
		return nil
	}
	if s == "" {
		d.keep(key, v)
		return nil
	}
	return &s
}

func (d *decoder) integer(key string) *int64 {
	v, ok := d.raw[key]
	if !ok {
		return nil
	}
	switch t := v.(type) {
	case int64:
		return &t
	case float64:
		if t == math.Trunc(t) {
			n := int64(t)
			return &n
		}
	}
	d.keep(key, v)
	return nil
}

func (d *decoder) decimal(key string) *float64 {
	v, ok := d.raw[key]
	if !ok {
		return nil
	}
	switch t := v.(type) {
	case float64:
		return &t
	case int64:
		f := float64(t)
		return &f
	}
	d.keep(key, v)
	return nil
}

func set[T any](m map[string]any, key string, v *T) {
	if v != nil {
		m[key] = *v
	}
}
