// Crowdpulse - Social Media Audience Intelligence and Posting Analytics
// Copyright 2026 Crowdpulse contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/crowdpulse/crowdpulse

package validation

import (
	"strings"
	"testing"
)

type sampleRequest struct {
	Platform  string `validate:"required,platform"`
	EventType string `validate:"required,oneof=like share comment"`
	Limit     int    `validate:"min=1,max=100"`
}

func TestValidateStructPasses(t *testing.T) {
	req := sampleRequest{Platform: "twitter", EventType: "like", Limit: 10}
	if err := ValidateStruct(&req); err != nil {
		t.Fatalf("Expected validation to pass, got: %v", err)
	}
}

func TestValidateStructRejectsUnknownPlatform(t *testing.T) {
	req := sampleRequest{Platform: "myspace", EventType: "like", Limit: 10}
	err := ValidateStruct(&req)
	if err == nil {
		t.Fatal("Expected validation error for unknown platform")
	}
	if len(err.Errors()) != 1 {
		t.Fatalf("Expected 1 error, got %d", len(err.Errors()))
	}
	if err.Errors()[0].Tag() != "platform" {
		t.Errorf("Expected platform tag, got %s", err.Errors()[0].Tag())
	}
	if !strings.Contains(err.Error(), "supported social platform") {
		t.Errorf("Unexpected message: %s", err.Error())
	}
}

func TestValidateStructMultipleErrors(t *testing.T) {
	req := sampleRequest{Platform: "", EventType: "poke", Limit: 0}
	err := ValidateStruct(&req)
	if err == nil {
		t.Fatal("Expected validation errors")
	}
	if len(err.Errors()) != 3 {
		t.Fatalf("Expected 3 errors, got %d", len(err.Errors()))
	}

	apiErr := err.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("Expected VALIDATION_ERROR code, got %s", apiErr.Code)
	}
	if _, ok := apiErr.Details["fields"]; !ok {
		t.Error("Expected fields detail for multiple errors")
	}
}

func TestToAPIErrorSingleError(t *testing.T) {
	req := sampleRequest{Platform: "twitter", EventType: "like", Limit: 500}
	err := ValidateStruct(&req)
	if err == nil {
		t.Fatal("Expected validation error for limit")
	}

	apiErr := err.ToAPIError()
	if apiErr.Details["field"] != "Limit" {
		t.Errorf("Expected Limit field detail, got %v", apiErr.Details["field"])
	}
	if !strings.Contains(apiErr.Message, "at most 100") {
		t.Errorf("Unexpected message: %s", apiErr.Message)
	}
}
