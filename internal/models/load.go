package models

// LoadStatus represents where a load is in its lifecycle
type LoadStatus string

const (
	LoadStatusPending    LoadStatus = "Pending"
	LoadStatusDispatched LoadStatus = "Dispatched"
	LoadStatusInTransit  LoadStatus = "In Transit"
	LoadStatusDelivered  LoadStatus = "Delivered"
	LoadStatusCancelled  LoadStatus = "Cancelled"
)

type DocumentType string

const (
	DocumentBOL     DocumentType = "BOL"
	DocumentPOD     DocumentType = "POD"
	DocumentRateCon DocumentType = "RateCon"
	DocumentLumper  DocumentType = "Lumper"
)

type DocumentStatus string

const (
	DocumentMissing  DocumentStatus = "Missing"
	DocumentUploaded DocumentStatus = "Uploaded"
	DocumentApproved DocumentStatus = "Approved"
)

type LoadDocument struct {
	Type   DocumentType   `json:"type" yaml:"type"`
	Status DocumentStatus `json:"status" yaml:"status"`
	URL    string         `json:"url,omitempty" yaml:"url"`
}

// Hazmat classification carried by a load
type Hazmat struct {
	Class           string `json:"class" yaml:"class"`         // e.g. "3", "2.1"
	UNNumber        string `json:"un_number" yaml:"un_number"` // e.g. "1203"
	PlacardRequired bool   `json:"placard_required" yaml:"placard_required"`
}

type Load struct {
	ID                string         `json:"id" yaml:"id"`
	Customer          string         `json:"customer" yaml:"customer"`
	Origin            string         `json:"origin" yaml:"origin"`
	Destination       string         `json:"destination" yaml:"destination"`
	PickupDate        string         `json:"pickup_date" yaml:"pickup_date"`
	DeliveryDate      string         `json:"delivery_date" yaml:"delivery_date"`
	Rate              float64        `json:"rate" yaml:"rate"`
	Weight            int            `json:"weight" yaml:"weight"`
	Status            LoadStatus     `json:"status" yaml:"status"`
	AssignedDriverID  *string        `json:"assigned_driver_id,omitempty" yaml:"assigned_driver_id"`
	Commodity         string         `json:"commodity" yaml:"commodity"`
	OriginCoords      *Coordinates   `json:"origin_coords,omitempty" yaml:"origin_coords"`
	DestinationCoords *Coordinates   `json:"destination_coords,omitempty" yaml:"destination_coords"`
	Documents         []LoadDocument `json:"documents" yaml:"documents"`
	Hazmat            *Hazmat        `json:"hazmat,omitempty" yaml:"hazmat"`
}

// Clone deep-copies the load so callers never share slices or pointers with the store
func (l Load) Clone() Load {
	c := l
	if l.AssignedDriverID != nil {
		id := *l.AssignedDriverID
		c.AssignedDriverID = &id
	}
	if l.OriginCoords != nil {
		oc := *l.OriginCoords
		c.OriginCoords = &oc
	}
	if l.DestinationCoords != nil {
		dc := *l.DestinationCoords
		c.DestinationCoords = &dc
	}
	if l.Documents != nil {
		c.Documents = append([]LoadDocument(nil), l.Documents...)
	}
	if l.Hazmat != nil {
		h := *l.Hazmat
		c.Hazmat = &h
	}
	return c
}

// MissingDocuments lists the document types still marked Missing
func (l Load) MissingDocuments() []DocumentType {
	var missing []DocumentType
	for _, doc := range l.Documents {
		if doc.Status == DocumentMissing {
			missing = append(missing, doc.Type)
		}
	}
	return missing
}
