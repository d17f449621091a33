package packets

type CreateSessionRequest struct {
	SessionDate string  `json:"session_date" binding:"required"`
	Minutes     int     `json:"minutes" binding:"required,min=1,max=720"`
	Surah       *string `json:"surah"`
	JuzDone     *int    `json:"juz_done" binding:"omitempty,min=1,max=30"`
}
