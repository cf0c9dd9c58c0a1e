// Package transport tracks the physical movement jobs behind distribution
// orders and resolves transport references for display.
package transport

import "time"

// Leg represents the current stage of a transport job.
type Leg string

const (
	LegAssigned Leg = "ASSIGNED"
	LegLoading  Leg = "LOADING"
	LegEnRoute  Leg = "EN_ROUTE"
	LegArrived  Leg = "ARRIVED"
	LegClosed   Leg = "CLOSED"
)

// IsValid checks if the leg is valid.
func (l Leg) IsValid() bool {
	switch l {
	case LegAssigned, LegLoading, LegEnRoute, LegArrived, LegClosed:
		return true
	default:
		return false
	}
}

// Job is the live status record of one physical fuel movement.
type Job struct {
	ID           int64      `json:"id"`
	Reference    string     `json:"reference"`
	DriverName   string     `json:"driver_name"`
	TruckPlate   string     `json:"truck_plate"`
	TrailerPlate string     `json:"trailer_plate,omitempty"`
	CurrentLeg   Leg        `json:"current_leg"`
	AssignedAt   *time.Time `json:"assigned_at,omitempty"`
	LoadedAt     *time.Time `json:"loaded_at,omitempty"`
	DepartedAt   *time.Time `json:"departed_at,omitempty"`
	ArrivedAt    *time.Time `json:"arrived_at,omitempty"`
	ClosedAt     *time.Time `json:"closed_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// OrderRef carries the transport fields an order embeds, used as the static
// fallback when no live job exists yet.
type OrderRef struct {
	TransportRef    string
	TransportNumber string
	TruckPlate      string
	TrailerPlate    string
	DriverName      string
}

// Movement is the richest available description of a shipment's physical
// state. Live reports whether a live job backed the view; when false the
// fields come from the order's own embedded data and Leg is empty.
// TransportNumber is the paper waybill number orders carry; jobs do not
// record it, so it is only set on fallback views.
type Movement struct {
	Reference       string     `json:"reference"`
	Live            bool       `json:"live"`
	TransportNumber string     `json:"transport_number,omitempty"`
	DriverName      string     `json:"driver_name,omitempty"`
	TruckPlate      string     `json:"truck_plate,omitempty"`
	TrailerPlate    string     `json:"trailer_plate,omitempty"`
	CurrentLeg      Leg        `json:"current_leg,omitempty"`
	DepartedAt      *time.Time `json:"departed_at,omitempty"`
	ArrivedAt       *time.Time `json:"arrived_at,omitempty"`
}
