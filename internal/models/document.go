package models

// Document is the aggregate of every collection and the unit of persistence.
// Revision increases by one on every committed save.
type Document struct {
	Revision      int64          `json:"revision"`
	Users         []User         `json:"users"`
	CourseLines   []CourseLine   `json:"course_lines"`
	Courses       []Course       `json:"courses"`
	Requests      []Request      `json:"requests"`
	Enrollments   []Enrollment   `json:"enrollments"`
	Evaluations   []Evaluation   `json:"evaluations"`
	Grades        []Grade        `json:"grades"`
	Notifications []Notification `json:"notifications"`
}

// Normalize replaces nil collections with empty ones so the document always encodes as arrays.
func (d *Document) Normalize() {
	if d.Users == nil {
		d.Users = []User{}
	}
	if d.CourseLines == nil {
		d.CourseLines = []CourseLine{}
	}
	if d.Courses == nil {
		d.Courses = []Course{}
	}
	if d.Requests == nil {
		d.Requests = []Request{}
	}
	if d.Enrollments == nil {
		d.Enrollments = []Enrollment{}
	}
	if d.Evaluations == nil {
		d.Evaluations = []Evaluation{}
	}
	if d.Grades == nil {
		d.Grades = []Grade{}
	}
	if d.Notifications == nil {
		d.Notifications = []Notification{}
	}
}

// Clone returns a deep copy that shares no mutable memory with d.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	out := &Document{
		Revision:      d.Revision,
		Users:         append([]User{}, d.Users...),
		CourseLines:   append([]CourseLine{}, d.CourseLines...),
		Courses:       append([]Course{}, d.Courses...),
		Requests:      make([]Request, len(d.Requests)),
		Enrollments:   make([]Enrollment, len(d.Enrollments)),
		Evaluations:   append([]Evaluation{}, d.Evaluations...),
		Grades:        append([]Grade{}, d.Grades...),
		Notifications: append([]Notification{}, d.Notifications...),
	}
	for i, r := range d.Requests {
		if r.ReviewerID != nil {
			id := *r.ReviewerID
			r.ReviewerID = &id
		}
		if r.DecidedAt != nil {
			ts := *r.DecidedAt
			r.DecidedAt = &ts
		}
		if r.Applicant.Attachments != nil {
			r.Applicant.Attachments = append([]string{}, r.Applicant.Attachments...)
		}
		out.Requests[i] = r
	}
	for i, e := range d.Enrollments {
		if e.FinalGrade != nil {
			v := *e.FinalGrade
			e.FinalGrade = &v
		}
		out.Enrollments[i] = e
	}
	return out
}

// NextID returns max(id)+1 over items, or 1 when items is empty.
func NextID[T any](items []T, id func(T) int) int {
	max := 0
	for _, item := range items {
		if v := id(item); v > max {
			max = v
		}
	}
	return max + 1
}

// FindUser returns a pointer into d.Users or nil.
func (d *Document) FindUser(id int) *User {
	for i := range d.Users {
		if d.Users[i].ID == id {
			return &d.Users[i]
		}
	}
	return nil
}

// FindCourseLine returns a pointer into d.CourseLines or nil.
func (d *Document) FindCourseLine(id int) *CourseLine {
	for i := range d.CourseLines {
		if d.CourseLines[i].ID == id {
			return &d.CourseLines[i]
		}
	}
	return nil
}

// FindCourse returns a pointer into d.Courses or nil.
func (d *Document) FindCourse(id int) *Course {
	for i := range d.Courses {
		if d.Courses[i].ID == id {
			return &d.Courses[i]
		}
	}
	return nil
}

// FindRequest returns a pointer into d.Requests or nil.
func (d *Document) FindRequest(id int) *Request {
	for i := range d.Requests {
		if d.Requests[i].ID == id {
			return &d.Requests[i]
		}
	}
	return nil
}

// FindEvaluation returns a pointer into d.Evaluations or nil.
func (d *Document) FindEvaluation(id int) *Evaluation {
	for i := range d.Evaluations {
		if d.Evaluations[i].ID == id {
			return &d.Evaluations[i]
		}
	}
	return nil
}

// FindNotification returns a pointer into d.Notifications or nil.
func (d *Document) FindNotification(id int) *Notification {
	for i := range d.Notifications {
		if d.Notifications[i].ID == id {
			return &d.Notifications[i]
		}
	}
	return nil
}

// ChangeKind describes why the document changed.
type ChangeKind string

const (
	ChangeLoaded  ChangeKind = "loaded"
	ChangeMutated ChangeKind = "mutated"
	ChangeSynced  ChangeKind = "synced"
	ChangeReset   ChangeKind = "reset"
)

// ChangeEvent is emitted to observers after every committed document change.
type ChangeEvent struct {
	Kind     ChangeKind `json:"kind"`
	Revision int64      `json:"revision"`
}
