package model

import "time"

// Question is a post asking the team for help.
//
// CreatedBy holds the author's user ID. It is validated at creation time
// (the authenticated caller is stamped as author) but there is no cascading
// delete — if the user is later removed, the reference is orphaned and the
// question survives. Consumers that resolve authors must tolerate a missing
// user (see the insights aggregator's exclusion policy).
type Question struct {
	ID          string    `json:"id"          bson:"_id"`
	Title       string    `json:"title"       bson:"title"`
	Description string    `json:"description" bson:"description"`
	Tags        []string  `json:"tags"        bson:"tags"`
	CreatedBy   string    `json:"createdBy"   bson:"created_by"`
	CreatedAt   time.Time `json:"createdAt"   bson:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt"   bson:"updated_at"`
}

// Answer is a reply to a question.
//
// QuestionID must reference an existing question at creation time — the
// service layer checks this and refuses the insert with NotFound otherwise.
type Answer struct {
	ID         string    `json:"id"         bson:"_id"`
	Text       string    `json:"text"       bson:"text"`
	QuestionID string    `json:"questionId" bson:"question_id"`
	CreatedBy  string    `json:"createdBy"  bson:"created_by"`
	CreatedAt  time.Time `json:"createdAt"  bson:"created_at"`
	UpdatedAt  time.Time `json:"updatedAt"  bson:"updated_at"`
}
