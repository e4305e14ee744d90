package www

import (
	"path/filepath"
	"time"

	"github.com/icodeforyou/rapsounding-go/database"
	"github.com/icodeforyou/rapsounding-go/hours"
	"github.com/icodeforyou/rapsounding-go/sounding"
	"github.com/icodeforyou/rapsounding-go/types/maybe"
)

// soundingCard is one forecast hour as shown in the pages and pushed over
// the websocket.
type soundingCard struct {
	RunId        int64
	ForecastHour int
	ValidTime    string
	SBCAPE       float64
	SBCIN        float64
	LCL          maybe.Maybe[float64]
	LFC          maybe.Maybe[float64]
	EL           maybe.Maybe[float64]
	ImageURL     string
}

func imageURL(path string) string {
	return "/images/" + filepath.Base(path)
}

func validLabel(t time.Time) string {
	return hours.FromTime(t).ValidLabel()
}

func newSoundingCard(s sounding.Summary) soundingCard {
	fromPtr := func(p *float64) maybe.Maybe[float64] {
		if p == nil {
			return maybe.None[float64]()
		}
		return maybe.Some(*p)
	}
	return soundingCard{
		RunId:        s.RunId,
		ForecastHour: s.ForecastHour,
		ValidTime:    validLabel(s.ValidTime),
		SBCAPE:       s.SBCAPE,
		SBCIN:        s.SBCIN,
		LCL:          fromPtr(s.LCLPressure),
		LFC:          fromPtr(s.LFCPressure),
		EL:           fromPtr(s.ELPressure),
		ImageURL:     imageURL(s.Image),
	}
}

func soundingCardFromRow(r database.SoundingRow) soundingCard {
	return soundingCard{
		RunId:        r.RunId,
		ForecastHour: r.ForecastHour,
		ValidTime:    validLabel(r.ValidTime),
		SBCAPE:       r.SBCAPE,
		SBCIN:        r.SBCIN,
		LCL:          maybe.SqlNull(r.LCLPressure.Float64, r.LCLPressure.Valid),
		LFC:          maybe.SqlNull(r.LFCPressure.Float64, r.LFCPressure.Valid),
		EL:           maybe.SqlNull(r.ELPressure.Float64, r.ELPressure.Valid),
		ImageURL:     imageURL(r.ImagePath),
	}
}

type runPage struct {
	Found     bool
	Run       database.ModelRunRow
	Cycle     string
	Soundings []soundingCard
	Runs      []database.ModelRunRow
	Flashes   []string
}

func newRunPage(run database.ModelRunRow, rows []database.SoundingRow, found bool) runPage {
	page := runPage{Found: found, Run: run}
	if found {
		page.Cycle = hours.FromTime(run.InitTime).ValidLabel()
	}
	for _, r := range rows {
		page.Soundings = append(page.Soundings, soundingCardFromRow(r))
	}
	return page
}
