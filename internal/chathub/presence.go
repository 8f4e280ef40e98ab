package chathub

import "sync"

// Registry is the process-local presence map: which participants are
// connected to which rooms right now. It is ephemeral by design — a process
// restart empties it and clients must re-join to count as present again.
// All operations are linearizable under one lock; absence from this map is
// the sole "offline" signal used for notification fan-out.
type Registry struct {
	mu          sync.RWMutex
	rooms       map[string]map[string]Client // chatID -> participantID -> client
	clientRooms map[string]map[string]string // connID -> chatID -> participantID
}

func NewRegistry() *Registry {
	return &Registry{
		rooms:       make(map[string]map[string]Client),
		clientRooms: make(map[string]map[string]string),
	}
}

// Register adds the participant's connection to the room. A newer
// connection supersedes an earlier one for the same membership; the old
// connection's reverse-index entry is dropped so its eventual disconnect
// cannot evict the live registration.
func (r *Registry) Register(chatID, participantID string, c Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room := r.rooms[chatID]
	if room == nil {
		room = make(map[string]Client)
		r.rooms[chatID] = room
	}
	if prev, ok := room[participantID]; ok && prev.GetID() != c.GetID() {
		if memberships := r.clientRooms[prev.GetID()]; memberships != nil {
			delete(memberships, chatID)
			if len(memberships) == 0 {
				delete(r.clientRooms, prev.GetID())
			}
		}
	}
	room[participantID] = c

	memberships := r.clientRooms[c.GetID()]
	if memberships == nil {
		memberships = make(map[string]string)
		r.clientRooms[c.GetID()] = memberships
	}
	memberships[chatID] = participantID
}

// Unregister removes the participant from the room.
func (r *Registry) Unregister(chatID, participantID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room := r.rooms[chatID]
	if room == nil {
		return
	}
	c, ok := room[participantID]
	if !ok {
		return
	}
	r.removeLocked(chatID, participantID, c.GetID())
}

// UnregisterClient removes whatever membership the connection holds in the
// room and reports the participant id it was registered under.
func (r *Registry) UnregisterClient(chatID, connID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	participantID, ok := r.clientRooms[connID][chatID]
	if !ok {
		return "", false
	}
	r.removeLocked(chatID, participantID, connID)
	return participantID, true
}

// ParticipantFor reports the participant id the connection joined the room
// under, if any.
func (r *Registry) ParticipantFor(chatID, connID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	participantID, ok := r.clientRooms[connID][chatID]
	return participantID, ok
}

// MembersOf returns the participant ids currently present in the room.
func (r *Registry) MembersOf(chatID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room := r.rooms[chatID]
	out := make([]string, 0, len(room))
	for id := range room {
		out = append(out, id)
	}
	return out
}

// IsPresent reports whether the participant is connected to the room.
func (r *Registry) IsPresent(chatID, participantID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.rooms[chatID][participantID]
	return ok
}

// ClientsIn returns the connections currently registered in the room.
func (r *Registry) ClientsIn(chatID string) []Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room := r.rooms[chatID]
	out := make([]Client, 0, len(room))
	for _, c := range room {
		out = append(out, c)
	}
	return out
}

// DropClient removes the connection from every room it had joined and
// returns chatID -> participantID for each removed membership, so the hub
// can advance read state on disconnect.
func (r *Registry) DropClient(connID string) map[string]string {
	r.mu.Lock()
	defer r.mu.Unlock()

	memberships := r.clientRooms[connID]
	if len(memberships) == 0 {
		delete(r.clientRooms, connID)
		return nil
	}
	removed := make(map[string]string, len(memberships))
	for chatID, participantID := range memberships {
		removed[chatID] = participantID
		r.removeLocked(chatID, participantID, connID)
	}
	delete(r.clientRooms, connID)
	return removed
}

// removeLocked clears one membership. The room entry is only deleted when
// it still points at this connection, so a registration that was replaced
// by a newer connection survives the old one's removal.
func (r *Registry) removeLocked(chatID, participantID, connID string) {
	if room := r.rooms[chatID]; room != nil {
		if cur, ok := room[participantID]; ok && cur.GetID() == connID {
			delete(room, participantID)
			if len(room) == 0 {
				delete(r.rooms, chatID)
			}
		}
	}
	if memberships := r.clientRooms[connID]; memberships != nil {
		delete(memberships, chatID)
		if len(memberships) == 0 {
			delete(r.clientRooms, connID)
		}
	}
}
