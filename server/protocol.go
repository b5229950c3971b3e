package main

// The REST API speaks plain JSON with readable keys. The websocket stream
// reuses the same snapshot body wrapped in a compact envelope whose "t"
// field carries the message type.
//
//   Client → Server (websocket):
//     "j" = join   {"t":"j","n":"PlayerName","i":"optional-id"}
//     "i" = input  {"t":"i","x":0.7,"y":-0.7,"b":1,"s":0}   (b=boost, s=split, 0/1)
//   Server → Client (websocket):
//     "w" = welcome {"t":"w","i":"id","n":"name","c":"#color","w":3000}
//     "s" = state   {"t":"s", ...Snapshot}
//     "e" = error   {"t":"e","m":"room full"}

// Message type identifiers, single-char for a compact protocol
const (
	MsgJoin    = "j"
	MsgInput   = "i"
	MsgWelcome = "w"
	MsgState   = "s"
	MsgError   = "e"
)

// ClientMessage is the base incoming websocket message.
type ClientMessage struct {
	Type  string  `json:"t"`
	Name  string  `json:"n,omitempty"`
	ID    string  `json:"i,omitempty"`
	X     float64 `json:"x,omitempty"`
	Y     float64 `json:"y,omitempty"`
	Boost int     `json:"b,omitempty"` // 0 or 1 (client sends int, not bool)
	Split int     `json:"s,omitempty"`
}

// WelcomeMsg is sent once a websocket client has joined.
type WelcomeMsg struct {
	Type      string  `json:"t"`
	ID        string  `json:"i"`
	Name      string  `json:"n"`
	Color     string  `json:"c"`
	WorldSize float64 `json:"w"`
}

// StateMsg wraps a snapshot for the websocket stream.
type StateMsg struct {
	Type string `json:"t"`
	Snapshot
}

type ErrorMsg struct {
	Type    string `json:"t"`
	Message string `json:"m"`
}

type PelletDTO struct {
	X      float64 `json:"x" msgpack:"x"`
	Y      float64 `json:"y" msgpack:"y"`
	Radius float64 `json:"r" msgpack:"r"`
	Value  int     `json:"v" msgpack:"v"`
}

type VirusDTO struct {
	X      float64 `json:"x" msgpack:"x"`
	Y      float64 `json:"y" msgpack:"y"`
	Radius float64 `json:"r" msgpack:"r"`
}

type BlobDTO struct {
	X      float64 `json:"x" msgpack:"x"`
	Y      float64 `json:"y" msgpack:"y"`
	Radius float64 `json:"radius" msgpack:"radius"`
}

type AgentDTO struct {
	ID        string    `json:"id" msgpack:"id"`
	Name      string    `json:"name" msgpack:"name"`
	Color     string    `json:"color" msgpack:"color"`
	Bot       bool      `json:"bot" msgpack:"bot"`
	Blobs     []BlobDTO `json:"blobs" msgpack:"blobs"`
	TotalMass float64   `json:"totalMass" msgpack:"totalMass"`
}

// LeaderboardEntry is a single leaderboard row.
type LeaderboardEntry struct {
	ID   string  `json:"id" msgpack:"id"`
	Name string  `json:"name" msgpack:"name"`
	Mass float64 `json:"mass" msgpack:"mass"`
}

// Snapshot is the read-only projection of a fully settled tick.
type Snapshot struct {
	Code        string             `json:"code" msgpack:"code"`
	Tick        uint64             `json:"tick" msgpack:"tick"`
	Clock       float64            `json:"clock" msgpack:"clock"`
	WorldSize   float64            `json:"worldSize" msgpack:"worldSize"`
	Pellets     []PelletDTO        `json:"pellets" msgpack:"pellets"`
	Viruses     []VirusDTO         `json:"viruses" msgpack:"viruses"`
	Agents      []AgentDTO         `json:"agents" msgpack:"agents"`
	Leaderboard []LeaderboardEntry `json:"leaderboard" msgpack:"leaderboard"`
}

// JoinResult describes the agent a join produced.
type JoinResult struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Color     string  `json:"color"`
	WorldSize float64 `json:"worldSize"`
}

// RoomInfo is returned by the API for the room list.
type RoomInfo struct {
	Code       string  `json:"code"`
	Humans     int     `json:"humans"`
	Bots       int     `json:"bots"`
	MaxPlayers int     `json:"maxPlayers"`
	Clock      float64 `json:"clock"`
}

// InputRequest is the body of POST /api/rooms/{code}/input.
type InputRequest struct {
	ID    string  `json:"id"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Boost bool    `json:"boost"`
	Split bool    `json:"split"`
}

type JoinRequest struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// CreateRoomRequest leaves fields nil to take the configured defaults.
type CreateRoomRequest struct {
	MaxPlayers *int `json:"maxPlayers"`
	BotCount   *int `json:"botCount"`
}

type CreateRoomResponse struct {
	Code       string `json:"code"`
	MaxPlayers int    `json:"maxPlayers"`
	BotCount   int    `json:"botCount"`
}
