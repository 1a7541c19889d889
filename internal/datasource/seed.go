package datasource

import (
	"time"

	"hostel-dashboard-backend/internal/model"
)

// Fixtures is a complete set of entities used to seed a fresh backend.
type Fixtures struct {
	Users         []model.User
	Notifications []model.Notification
	Receipts      []model.ReadReceipt
	Feedback      []model.Feedback
}

// DemoFixtures returns one hostel with a student, a warden, five notices, two
// receipts and two pieces of feedback, dated relative to now.
func DemoFixtures(now time.Time) Fixtures {
	now = now.UTC()
	student := model.User{
		ID: "student-1", Name: "John Doe", Email: "student@example.com",
		Role: model.RoleStudent, HostelID: "hostel-1", RoomNumber: "A-101",
		CreatedAt: now, UpdatedAt: now,
	}
	warden := model.User{
		ID: "warden-1", Name: "Jane Smith", Email: "warden@example.com",
		Role: model.RoleWarden, HostelID: "hostel-1",
		CreatedAt: now, UpdatedAt: now,
	}

	notice := func(id, title, message string, c model.Category, p model.Priority, at time.Time) model.Notification {
		return model.Notification{
			ID: id, Title: title, Message: message, Category: c, Priority: p,
			HostelID: warden.HostelID, CreatedByID: warden.ID, CreatedBy: warden, CreatedAt: at,
		}
	}

	return Fixtures{
		Users: []model.User{student, warden},
		Notifications: []model.Notification{
			notice("1", "Water Supply Interruption",
				"Due to maintenance work, water supply will be interrupted from 10 AM to 2 PM tomorrow.",
				model.CategoryMaintenance, model.PriorityMedium, now.AddDate(0, 0, -3)),
			notice("2", "Fire Drill Announcement",
				"A fire drill will be conducted on Friday at 3 PM. All students must participate.",
				model.CategoryEmergency, model.PriorityHigh, now.AddDate(0, 0, -1)),
			notice("3", "Weekend Mess Menu",
				"Special menu for the weekend includes pizza on Saturday and biryani on Sunday.",
				model.CategoryMess, model.PriorityLow, now.Add(-3*time.Hour)),
			notice("4", "Cultural Night",
				"Annual cultural night will be held next week. Register your performances by Monday.",
				model.CategoryEvents, model.PriorityMedium, now.Add(-2*time.Hour)),
			notice("5", "Room Inspection",
				"Monthly room inspection will be conducted on Tuesday starting at 10 AM.",
				model.CategoryGeneral, model.PriorityMedium, now.Add(-1*time.Hour)),
		},
		Receipts: []model.ReadReceipt{
			{ID: "read-1", NotificationID: "1", UserID: student.ID, ReadAt: now.AddDate(0, 0, -2)},
			{ID: "read-2", NotificationID: "3", UserID: student.ID, ReadAt: now.Add(-30 * time.Minute)},
		},
		Feedback: []model.Feedback{
			{
				ID: "1", Category: model.FeedbackMess, Rating: 4,
				Comment: "The food quality has improved significantly this month.",
				UserID:  student.ID, HostelID: student.HostelID,
				CreatedAt: now.Add(-48 * time.Hour), UpdatedAt: now.Add(-48 * time.Hour),
			},
			{
				ID: "2", Category: model.FeedbackFacilities, Rating: 3,
				Comment:  "The gym equipment needs maintenance.",
				UserID:   student.ID, HostelID: student.HostelID,
				Resolved: true,
				Response: "Maintenance team has been notified and will fix the equipment this week.",
				CreatedAt: now.Add(-72 * time.Hour), UpdatedAt: now.Add(-24 * time.Hour),
			},
		},
	}
}
