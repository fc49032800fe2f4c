package book

type CreateBookReq struct {
	Title           string `form:"title" json:"title" validate:"required"`
	Author          string `form:"author" json:"author" validate:"required"`
	ISBN            string `form:"isbn" json:"isbn" validate:"required"`
	ImageURL        string `form:"imageUrl" json:"imageUrl"`
	Subject         string `form:"subject" json:"subject" validate:"required"`
	ResearchArea    string `form:"researchArea" json:"researchArea" validate:"required"`
	Location        string `form:"location" json:"location" validate:"required"`
	TotalCopies     int64  `form:"totalCopies" json:"totalCopies" validate:"gte=0"`
	AvailableCopies int64  `form:"availableCopies" json:"availableCopies" validate:"gte=0"`
	Description     string `form:"description" json:"description"`
}
