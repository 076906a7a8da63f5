package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ServiceType string

const (
	ServiceEstateManagement    ServiceType = "Estate Management"
	ServiceArchitecturalDesign ServiceType = "Architectural Design"
	ServicePropertyValuation   ServiceType = "Property Valuation"
	ServiceLegalConsultation   ServiceType = "Legal Consultation"
)

func (t ServiceType) Valid() bool {
	switch t {
	case ServiceEstateManagement, ServiceArchitecturalDesign,
		ServicePropertyValuation, ServiceLegalConsultation:
		return true
	}
	return false
}

type ServiceStatus string

const (
	ServiceActive   ServiceStatus = "Active"
	ServiceInactive ServiceStatus = "Inactive"
)

var servicePropertyTypes = map[string]bool{
	"Residential": true, "Commercial": true, "Industrial": true,
	"Mixed-Use": true, "All": true,
}

type Service struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	Title        string               `bson:"title" json:"title"`
	ServiceType  ServiceType          `bson:"serviceType" json:"serviceType"`
	PropertyType string               `bson:"propertyType" json:"propertyType"`
	Description  string               `bson:"description" json:"description"`
	Price        string               `bson:"price" json:"price"`
	Location     string               `bson:"location" json:"location"`
	Images       []string             `bson:"images,omitempty" json:"images,omitempty"`
	Features     string               `bson:"features" json:"features"`
	Benefits     string               `bson:"benefits" json:"benefits"`
	Duration     string               `bson:"duration,omitempty" json:"duration,omitempty"`
	Status       ServiceStatus        `bson:"status" json:"status"`
	Subscribers  []primitive.ObjectID `bson:"subscribers" json:"subscribers"`
	CreatedAt    time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time            `bson:"updatedAt" json:"updatedAt"`
}

func (s *Service) Validate() error {
	if s.Title == "" || s.Description == "" || s.Price == "" ||
		s.Location == "" || s.Features == "" || s.Benefits == "" {
		return Invalid("title, description, price, location, features and benefits are required")
	}
	if !s.ServiceType.Valid() {
		return Invalid("invalid service type %q", s.ServiceType)
	}
	if !servicePropertyTypes[s.PropertyType] {
		return Invalid("invalid property type %q", s.PropertyType)
	}
	if s.Status == "" {
		s.Status = ServiceActive
	}
	if s.Status != ServiceActive && s.Status != ServiceInactive {
		return Invalid("invalid status %q", s.Status)
	}
	return nil
}
