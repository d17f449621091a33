package packets

type CreateEntryRequest struct {
	EntryDate string  `json:"entry_date" binding:"required"`
	Title     string  `json:"title" binding:"required"`
	Body      string  `json:"body" binding:"required"`
	Mood      *string `json:"mood"`
	PhotoURL  *string `json:"photo_url"`
}

type SaveMoodRequest struct {
	EntryDate string `json:"entry_date" binding:"required"`
	Mood      string `json:"mood" binding:"required"`
}
