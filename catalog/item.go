package catalog

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// ModelName is one of the published model identifiers
type ModelName string

const (
	ModelAlexNet ModelName = "alexnet"
	ModelResNet  ModelName = "resnet"
	ModelLeNet   ModelName = "lenet"
)

// Message returns the blurb served for the model
func (m ModelName) Message() string {
	switch m {
	case ModelAlexNet:
		return "Deep Learning FTW!"
	case ModelLeNet:
		return "LeCNN all the images"
	default:
		return "Have some residuals"
	}
}

// Validate will check the name is a known model
func (m ModelName) Validate() error {
	return validation.Validate(string(m),
		validation.Required,
		validation.In(string(ModelAlexNet), string(ModelResNet), string(ModelLeNet)),
	)
}

type Image struct {
	URL  string `json:"url"`
	Name string `json:"name"`
}

// Validate will run validation rules
func (i Image) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.URL, validation.Required, is.URL),
		validation.Field(&i.Name, validation.Required),
	)
}

type Item struct {
	Name        string   `json:"name"`
	Description *string  `json:"description"`
	Price       float64  `json:"price"`
	Tax         *float64 `json:"tax"`
	Tags        []string `json:"tags"`
	Image       []Image  `json:"image"`
}

// Validate will run validation rules
func (i Item) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.Name, validation.Required),
		validation.Field(&i.Description, validation.Length(0, 300)),
		validation.Field(&i.Price, validation.Required, validation.Min(0.0).Exclusive()),
		validation.Field(&i.Image),
	)
}

// Normalize removes duplicate tags keeping first occurrence order
func (i Item) Normalize() Item {
	if i.Tags == nil {
		i.Tags = []string{}
		return i
	}

	seen := make(map[string]struct{}, len(i.Tags))
	tags := make([]string, 0, len(i.Tags))
	for _, tag := range i.Tags {
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	i.Tags = tags
	return i
}

// User is the owner attached to an item update
type User struct {
	Username string  `json:"username"`
	FullName *string `json:"full_name"`
}

// Validate will run validation rules
func (u User) Validate() error {
	return validation.ValidateStruct(&u,
		validation.Field(&u.Username, validation.Required),
	)
}

// Offer groups items under a single price
type Offer struct {
	Name        string   `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Items       []Item   `json:"items"`
}

// Validate will run validation rules
func (o Offer) Validate() error {
	return validation.ValidateStruct(&o,
		validation.Field(&o.Name, validation.Required),
		validation.Field(&o.Price, validation.NotNil),
		validation.Field(&o.Items, validation.NotNil),
	)
}

// Normalize normalizes every item in the offer
func (o Offer) Normalize() Offer {
	items := make([]Item, len(o.Items))
	for i, item := range o.Items {
		items[i] = item.Normalize()
	}
	o.Items = items
	return o
}

// ItemUpdate is the body of PUT /items/:item_id. Item travels under its
// own key next to the user and importance.
type ItemUpdate struct {
	Item       *Item `json:"item"`
	User       *User `json:"user"`
	Importance *int  `json:"importance"`
}

// Validate will run validation rules
func (u ItemUpdate) Validate() error {
	return validation.ValidateStruct(&u,
		validation.Field(&u.Item, validation.NotNil),
		validation.Field(&u.User, validation.NotNil),
		validation.Field(&u.Importance, validation.NotNil),
	)
}

// ItemUpdateResult echoes an accepted update
type ItemUpdateResult struct {
	ItemID     int  `json:"item_id"`
	Item       Item `json:"item"`
	User       User `json:"user"`
	Importance int  `json:"importance"`
}

// ItemResult is an Item echoed back with derived fields
type ItemResult struct {
	ItemID *int `json:"item_id,omitempty"`
	Item
	PriceWithTax *float64 `json:"price_with_tax,omitempty"`
	Q            string   `json:"q,omitempty"`
}

// NewItemResult computes price_with_tax when a tax is set
func NewItemResult(item Item) ItemResult {
	res := ItemResult{Item: item.Normalize()}
	if item.Tax != nil && *item.Tax != 0 {
		total := item.Price + *item.Tax
		res.PriceWithTax = &total
	}
	return res
}
