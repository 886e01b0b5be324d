// Package defs contains shared definitions.
package defs

// APIError is returned on failure.
type APIError struct {
	Error string `json:"error"`
}

// APICamera is a camera.
type APICamera struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Port    int    `json:"port"`
	Active  bool   `json:"active"`
}

// APICameraList is a list of cameras.
type APICameraList struct {
	Items []APICamera `json:"items"`
}

// APICameraPatch changes the name or the position of a camera.
type APICameraPatch struct {
	Name  *string `json:"name"`
	Index *int    `json:"index"`
}

// APIPTZRequest is an operator action.
type APIPTZRequest struct {
	Action    string `json:"action"`
	Speed     int    `json:"speed"`
	TiltSpeed int    `json:"tiltSpeed"`
	Slot      int    `json:"slot"`
}

// APIPTZResult is an applied operator action.
type APIPTZResult struct {
	Camera string `json:"camera"`
	Action string `json:"action"`
	Packet string `json:"packet"`
	Client string `json:"client,omitempty"`
	Error  string `json:"error,omitempty"`
}

// APIPTZJoin is sent to an operator after joining a PTZ room.
type APIPTZJoin struct {
	Camera string `json:"camera"`
	Client string `json:"client"`
}
