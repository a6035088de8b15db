package packet

import "github.com/voxrpg/server/internal/component"

// Client message types.
const (
	CJoin           = "join"
	CController     = "controller"
	CAction         = "action"
	CInvite         = "invite"
	CInviteResponse = "invite_response"
	CGroup          = "group"
	CTame           = "tame"
	CSetWaypoint    = "set_waypoint"
	CQuit           = "quit"
)

// Server message types.
const (
	SJoined         = "joined"
	SInvite         = "invite"
	SInvitePending  = "invite_pending"
	SInviteComplete = "invite_complete"
	SGroupUpdate    = "group_update"
	SEntitySync     = "entity_sync"
	SEntityDeleted  = "entity_deleted"
	SNotice         = "notice"
)

type Join struct {
	Name     string `json:"name"`
	Spectate bool   `json:"spectate,omitempty"`
}

type Controller struct {
	MoveDir   [2]float64 `json:"move_dir"`
	LookDir   [3]float64 `json:"look_dir"`
	Primary   bool       `json:"primary,omitempty"`
	Secondary bool       `json:"secondary,omitempty"`
	Ability1  bool       `json:"ability1,omitempty"`
	Jump      bool       `json:"jump,omitempty"`
	Roll      bool       `json:"roll,omitempty"`
	Fly       bool       `json:"fly,omitempty"`
}

type Action struct {
	Kind string `json:"kind"`
	Slot int    `json:"slot,omitempty"`
	Bag  int    `json:"bag,omitempty"`
}

type InviteRequest struct {
	Target component.Uid `json:"target"`
}

type InviteAnswer struct {
	Accept bool `json:"accept"`
}

type GroupRequest struct {
	Kind   string        `json:"kind"` // leave, kick, assign_leader
	Target component.Uid `json:"target,omitempty"`
}

type TameRequest struct {
	Pet component.Uid `json:"pet"`
}

type Joined struct {
	Uid         component.Uid `json:"uid"`
	CharacterID int64         `json:"character_id,omitempty"`
	Spectator   bool          `json:"spectator,omitempty"`
}

type Invite struct {
	Inviter component.Uid `json:"inviter"`
	Name    string        `json:"name,omitempty"`
	TTL     float64       `json:"ttl"` // seconds
}

type InvitePending struct {
	Target component.Uid `json:"target"`
}

// InviteAnswerKind is how an invitation ended.
type InviteAnswerKind string

const (
	InviteAccepted InviteAnswerKind = "accepted"
	InviteDeclined InviteAnswerKind = "declined"
	InviteTimedOut InviteAnswerKind = "timed_out"
)

type InviteComplete struct {
	Target component.Uid    `json:"target"`
	Answer InviteAnswerKind `json:"answer"`
}

type GroupUpdate struct {
	Kind   string        `json:"kind"`
	Group  uint32        `json:"group"`
	Member component.Uid `json:"member,omitempty"`
	Pet    bool          `json:"pet,omitempty"`
	Leader component.Uid `json:"leader,omitempty"`
}

// EntityState carries the components of one entity that changed since the
// last sync. Absent fields did not change.
type EntityState struct {
	Uid       component.Uid  `json:"uid"`
	Pos       *[3]float64    `json:"pos,omitempty"`
	Vel       *[3]float64    `json:"vel,omitempty"`
	Ori       *[3]float64    `json:"ori,omitempty"`
	State     string         `json:"state,omitempty"`
	Energy    *[2]int32      `json:"energy,omitempty"` // current, maximum
	Health    *[2]int32      `json:"health,omitempty"`
	Alignment string         `json:"alignment,omitempty"`
	Owner     *component.Uid `json:"owner,omitempty"`
	Pet       string         `json:"pet,omitempty"`
}

type EntitySync struct {
	Tick     uint64        `json:"tick"`
	Entities []EntityState `json:"entities"`
}

type EntityDeleted struct {
	Uids []component.Uid `json:"uids"`
}

type Notice struct {
	Text string `json:"text"`
}
