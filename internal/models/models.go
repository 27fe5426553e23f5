package models

import "time"

/*** Session protocol ***/

// WSFrame is the envelope for every websocket message in both directions.
type WSFrame struct {
	Type string      `json:"type"` // "join","edit","activity","resync","peer-edit","presence","joined","left","error"
	Data interface{} `json:"data,omitempty"`
}

// Inbound event names (client -> server).
const (
	EventJoin     = "join"
	EventEdit     = "edit"
	EventActivity = "activity"
)

// Outbound event names (server -> client).
const (
	EventResync   = "resync"
	EventPeerEdit = "peer-edit"
	EventPresence = "presence"
	EventJoined   = "joined"
	EventLeft     = "left"
	EventError    = "error"
)

type JoinRequest struct {
	DocID    string `json:"docId"`
	Username string `json:"username"`
}

type EditRequest struct {
	DocID    string `json:"docId"`
	Username string `json:"username"`
	Content  string `json:"content"`
}

type ActivityRequest struct {
	DocID    string `json:"docId"`
	Username string `json:"username"`
	IsActive bool   `json:"isActive"`
}

// Resync carries the full current content, sent only to a joining connection.
type Resync struct {
	Content string `json:"content"`
}

// PeerEdit is another user's full-content update.
type PeerEdit struct {
	Content  string `json:"content"`
	Username string `json:"username"`
}

// PresenceSnapshot lists every user currently present in a room, sorted.
type PresenceSnapshot struct {
	Usernames []string `json:"usernames"`
}

// MemberChange announces a single user joining or leaving a room.
type MemberChange struct {
	Username string `json:"username"`
}

// ActivityNotice relays the advisory typing hint to peers. It carries no
// presence meaning; a user stays present until their last connection closes.
type ActivityNotice struct {
	Username string `json:"username"`
	IsActive bool   `json:"isActive"`
}

/*** Document store ***/

// Document is the durable record behind a room. The live session never
// writes it; saves go through the store at explicit user action.
type Document struct {
	DocID         string   `json:"docId" gorm:"primaryKey;column:doc_id"`
	Title         string   `json:"title"`
	Content       string   `json:"content"`
	Owner         string   `json:"owner"`
	Collaborators []string `json:"collaborators" gorm:"serializer:json"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Version is one saved snapshot of a document's content.
type Version struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	DocID     string    `json:"docId" gorm:"index;column:doc_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

type CreateDocumentRequest struct {
	Title string `json:"title"`
}

type SaveDocumentRequest struct {
	Content string `json:"content"`
}

type RevertRequest struct {
	VersionID uint `json:"versionId"`
}

type InviteRequest struct {
	Username string `json:"username"`
}

type InviteResponse struct {
	Collaborator string `json:"collaborator"`
}
