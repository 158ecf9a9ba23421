package erlc

type playerDTO struct {
	// "Username:UserId"
	Player     string `json:"Player"`
	Permission string `json:"Permission"`
	Callsign   string `json:"Callsign"`
	Team       string `json:"Team"`
}

type vehicleDTO struct {
	Texture string `json:"Texture"`
	Name    string `json:"Name"`
	Owner   string `json:"Owner"`
}

type serverDTO struct {
	Name           string `json:"Name"`
	OwnerID        int64  `json:"OwnerId"`
	CurrentPlayers int    `json:"CurrentPlayers"`
	MaxPlayers     int    `json:"MaxPlayers"`
	JoinKey        string `json:"JoinKey"`
}

type commandDTO struct {
	Command string `json:"command"`
}
