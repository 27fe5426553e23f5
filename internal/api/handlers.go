package api

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"docsync/internal/docstore"
	"docsync/internal/identity"
	"docsync/internal/models"
	"docsync/internal/session"
	"docsync/internal/utils"
)

type Handlers struct {
	log      *utils.Logger
	router   *session.Router
	verifier *identity.Verifier
	repo     *docstore.Repository
}

func NewHandlers(log *utils.Logger, router *session.Router, verifier *identity.Verifier, repo *docstore.Repository) *Handlers {
	return &Handlers{log: log, router: router, verifier: verifier, repo: repo}
}

func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	_, _ = w.Write([]byte("ok"))
}

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// CollabWS is the live session endpoint. The connection is authenticated
// before the upgrade; an unresolvable token means no room attachment at
// all. After that the loop dispatches join/edit/activity events until the
// transport closes, then runs the disconnect sequence.
func (h *Handlers) CollabWS(w http.ResponseWriter, r *http.Request) {
	username, err := h.verifier.Verify(identity.TokenFromRequest(r))
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	client := session.NewClient(uuid.NewString(), username, conn)
	h.router.Connect(client)
	defer h.router.Disconnect(client)

	for {
		var frame models.WSFrame
		if err := conn.ReadJSON(&frame); err != nil {
			return
		}
		h.dispatch(client, frame)
	}
}

// dispatch applies one inbound frame. Malformed frames, events for rooms
// the connection is not in, and frames naming a username other than the
// authenticated one are protocol errors: dropped with no room mutation.
func (h *Handlers) dispatch(client *session.Client, frame models.WSFrame) {
	switch frame.Type {
	case models.EventJoin:
		var req models.JoinRequest
		unmarshal(frame.Data, &req)
		if req.DocID == "" || !ownFrame(client, req.Username) {
			return
		}
		h.router.Join(client, req.DocID)

	case models.EventEdit:
		var req models.EditRequest
		unmarshal(frame.Data, &req)
		if req.DocID == "" || !ownFrame(client, req.Username) {
			return
		}
		h.router.Edit(client, req.DocID, req.Content)

	case models.EventActivity:
		var req models.ActivityRequest
		unmarshal(frame.Data, &req)
		if req.DocID == "" || !ownFrame(client, req.Username) {
			return
		}
		h.router.Activity(client, req.DocID, req.IsActive)

	default:
		h.log.Warn("unknown frame type", "type", frame.Type)
		errFrame(client, "unknown event type")
	}
}

func errFrame(client *session.Client, msg string) {
	_ = client.Send(models.WSFrame{Type: models.EventError, Data: map[string]string{"message": msg}})
}

// ownFrame accepts frames that carry the authenticated username or leave
// it blank; anything else is spoofing and gets dropped.
func ownFrame(client *session.Client, username string) bool {
	return username == "" || username == client.Username
}

func unmarshal(in any, out any) {
	b, _ := json.Marshal(in)
	_ = json.Unmarshal(b, out)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
