package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func validService() *Service {
	return &Service{
		Title:        "Full estate management",
		ServiceType:  ServiceEstateManagement,
		PropertyType: "Residential",
		Description:  "Year-round facility management for residential estates",
		Price:        "1,200,000 / year",
		Location:     "Abuja",
		Features:     "Security, cleaning, maintenance",
		Benefits:     "Single point of contact for the whole estate",
	}
}

func TestServiceValidate(t *testing.T) {
	s := validService()
	require.NoError(t, s.Validate())
	require.Equal(t, ServiceActive, s.Status, "status defaults to Active")

	s = validService()
	s.ServiceType = "Fortune Telling"
	require.Error(t, s.Validate())

	s = validService()
	s.PropertyType = "Agricultural"
	require.Error(t, s.Validate())

	s = validService()
	s.Benefits = ""
	require.Error(t, s.Validate())

	s = validService()
	s.Status = "Paused"
	require.Error(t, s.Validate())
}
