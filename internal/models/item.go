package models

import (
	"regexp"
	"strings"
)

// Status is the workflow state shared by orders and shipments.
type Status string

const (
	StatusWaiting  Status = "WAIT"
	StatusComplete Status = "COMPLETE"
)

var completePattern = regexp.MustCompile(`(?i)(완료|complete)`)

// ParseStatus maps free-form sheet text onto a Status; anything not marked complete is waiting.
func ParseStatus(s string) Status {
	if completePattern.MatchString(strings.TrimSpace(s)) {
		return StatusComplete
	}
	return StatusWaiting
}

// Item carries the denormalized item fields stored on orders, deliveries and shipments.
type Item struct {
	ItemCode string `json:"itemCode" validate:"required_without=ItemName"`
	ItemName string `json:"itemName" validate:"required_without=ItemCode"`
	Category string `json:"category"`
	ItemType string `json:"itemType"`
	CarType  string `json:"carType"`
	Division string `json:"division"`
}
