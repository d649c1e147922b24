package mongo

import (
	"testing"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/carewell-hms/allocation-service/internal/core/domain"
)

func TestDayGroupID(t *testing.T) {
	doctorID := uuid.New()
	weekly := domain.ScheduleSlot{DoctorID: doctorID, DayOfWeek: domain.Monday, StartTime: "09:00", EndTime: "12:00"}
	dated := domain.ScheduleSlot{DoctorID: doctorID, Date: "2026-03-14", StartTime: "09:00", EndTime: "12:00"}

	// Every writer of the same doctor/day group must land on the same lock
	// document; that shared write is what serializes concurrent transactions.
	sibling := weekly
	sibling.ID = uuid.New()
	sibling.StartTime = "14:00"
	sibling.EndTime = "16:00"
	if dayGroupID(weekly) != dayGroupID(sibling) {
		t.Errorf("same group must share a lock id: %q vs %q", dayGroupID(weekly), dayGroupID(sibling))
	}

	if dayGroupID(weekly) == dayGroupID(dated) {
		t.Error("weekly and dated groups must not share a lock id")
	}

	otherDoctor := weekly
	otherDoctor.DoctorID = uuid.New()
	if dayGroupID(weekly) == dayGroupID(otherDoctor) {
		t.Error("different doctors must not share a lock id")
	}

	tuesday := weekly
	tuesday.DayOfWeek = domain.Tuesday
	if dayGroupID(weekly) == dayGroupID(tuesday) {
		t.Error("different weekdays must not share a lock id")
	}
}

func TestOverlapFilter(t *testing.T) {
	slot := domain.ScheduleSlot{
		DoctorID:  uuid.New(),
		DayOfWeek: domain.Monday,
		StartTime: "09:00",
		EndTime:   "12:00",
	}

	filter := overlapFilter(slot)

	if filter["doctorId"] != slot.DoctorID.String() {
		t.Errorf("doctorId = %v", filter["doctorId"])
	}
	if filter["isActive"] != true {
		t.Error("only active slots participate in conflict detection")
	}
	if filter["dayOfWeek"] != "MONDAY" {
		t.Errorf("dayOfWeek = %v", filter["dayOfWeek"])
	}
	if _, ok := filter["date"]; ok {
		t.Error("weekly slot must not filter on date")
	}

	// Half-open interval: existing.start < new.end AND existing.end > new.start.
	if start, _ := filter["startTime"].(bson.M); start["$lt"] != "12:00" {
		t.Errorf("startTime filter = %v", filter["startTime"])
	}
	if end, _ := filter["endTime"].(bson.M); end["$gt"] != "09:00" {
		t.Errorf("endTime filter = %v", filter["endTime"])
	}

	dated := slot
	dated.DayOfWeek = ""
	dated.Date = "2026-03-14"
	filter = overlapFilter(dated)
	if filter["date"] != "2026-03-14" {
		t.Errorf("date = %v", filter["date"])
	}
	if _, ok := filter["dayOfWeek"]; ok {
		t.Error("dated slot must not filter on dayOfWeek")
	}
}
