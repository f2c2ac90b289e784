// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Room request statuses as reported by the lodging API.
const (
	RequestStatusDraft     = "DRAFT"
	RequestStatusSubmitted = "SUBMITTED"
	RequestStatusAccepted  = "ACCEPTED"
	RequestStatusRejected  = "REJECTED"
)

// Front-desk decision values the lodging API accepts.
const (
	DecisionAccept = "ACCEPT"
	DecisionReject = "REJECT"
)

// Worker statuses as reported by the lodging API.
const (
	WorkerStatusUnassigned = "Unassigned"
	WorkerStatusInHouse    = "In-house"
	WorkerStatusUpcoming   = "Upcoming"
	WorkerStatusCheckedOut = "Checked-out"
)

// Hotel is a partner hotel offered for room requests.
type Hotel struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Count int    `json:"count,omitempty"` // worker count when used as a bucket
}

// RoomRequest is an employer's request for rooms at a hotel.
type RoomRequest struct {
	ID          string `json:"id"`
	EmployerID  string `json:"employer_id,omitempty"`
	HotelID     string `json:"hotel_id"`
	HotelName   string `json:"hotel_name,omitempty"`
	StayStart   string `json:"stay_start"`
	StayEnd     string `json:"stay_end"`
	Headcount   int    `json:"headcount"`
	SingleRooms int    `json:"single_rooms"`
	DoubleRooms int    `json:"double_rooms"`
	Status      string `json:"status"`
	Notes       string `json:"notes,omitempty"`
}

// Ref returns the short human-facing reference for a request, e.g. "REQ-1A2B3C".
func (r RoomRequest) Ref() string {
	id := r.ID
	if len(id) > 6 {
		id = id[:6]
	}
	out := make([]byte, len(id))
	for i := 0; i < len(id); i++ {
		c := id[i]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		out[i] = c
	}
	return "REQ-" + string(out)
}

// Nights returns the stay length in nights, or 0 if the dates do not parse
// or the range is inverted.
func (r RoomRequest) Nights() int {
	start, err1 := time.Parse("2006-01-02", r.StayStart)
	end, err2 := time.Parse("2006-01-02", r.StayEnd)
	if err1 != nil || err2 != nil {
		return 0
	}
	n := int(end.Sub(start).Hours() / 24)
	if n < 0 {
		return 0
	}
	return n
}

// Capacity returns the number of beds the requested rooms provide.
func (r RoomRequest) Capacity() int {
	return r.SingleRooms + r.DoubleRooms*2
}

// Worker is one roster entry belonging to an employer.
type Worker struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Phone      string `json:"phone,omitempty"`
	Status     string `json:"status"`
	Hotel      string `json:"hotel,omitempty"`
	RoomNo     string `json:"room_no,omitempty"`
	CheckinTS  string `json:"checkin_ts,omitempty"`
	CheckoutTS string `json:"checkout_ts,omitempty"`
	GovIDType  string `json:"gov_id_type,omitempty"`
	GovIDLast4 string `json:"gov_id_last4,omitempty"`
	Notes      string `json:"notes,omitempty"`
}

// NewWorker is the payload for adding workers to the roster (single add or
// CSV bulk import).
type NewWorker struct {
	Name       string `json:"name"`
	Phone      string `json:"phone,omitempty"`
	GovIDType  string `json:"gov_id_type,omitempty"`
	GovIDLast4 string `json:"gov_id_last4,omitempty"`
	Notes      string `json:"notes,omitempty"`
}

// WorkerBuckets summarizes the roster for the bucket cards above the table.
type WorkerBuckets struct {
	ByHotel       []Hotel `json:"byHotel"`
	Unassigned    int     `json:"unassigned"`
	Upcoming      int     `json:"upcoming"`
	CheckedOut30d int     `json:"checkedOut30d"`
}

// UserRow is one row of the admin user table.
type UserRow struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Name       string    `json:"name,omitempty"`
	Role       Role      `json:"role"`
	EmployerID string    `json:"employer_id,omitempty"`
	HotelID    string    `json:"hotel_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Stat is one summary figure shown as a dashboard stat card.
type Stat struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Hint  string `json:"hint,omitempty"`
}
