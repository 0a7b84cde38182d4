package service

import "thrivingcare-api/internal/domain"

// PayPackage desglosa el bruto semanal de una posicion en base gravable por
// hora mas estipendios libres de impuestos derivados de la tabla per-diem.
type PayPackage struct {
	WeeklyGross    int     `json:"weekly_gross"`
	HoursPerWeek   int     `json:"hours_per_week"`
	LodgingStipend int     `json:"lodging_stipend_weekly"`
	MealsStipend   int     `json:"meals_stipend_weekly"`
	TaxableWeekly  int     `json:"taxable_weekly"`
	TaxableHourly  float64 `json:"taxable_hourly"`
}

type perDiemRate struct {
	Lodging int // por noche
	Meals   int // por dia
}

// Tasas diarias por estado; fuera de la tabla aplica la tasa estandar.
var perDiemStandard = perDiemRate{Lodging: 107, Meals: 59}

var perDiemByState = map[string]perDiemRate{
	"CA": {Lodging: 161, Meals: 74},
	"NY": {Lodging: 152, Meals: 74},
	"WA": {Lodging: 139, Meals: 69},
	"MA": {Lodging: 148, Meals: 74},
	"CO": {Lodging: 129, Meals: 69},
	"FL": {Lodging: 124, Meals: 64},
	"TX": {Lodging: 112, Meals: 64},
	"AZ": {Lodging: 118, Meals: 64},
	"HI": {Lodging: 199, Meals: 79},
	"AK": {Lodging: 189, Meals: 79},
}

const (
	defaultHoursPerWeek = 36
	// Piso gravable por hora: los estipendios no pueden comerse toda la base.
	minTaxableHourly = 20.0
)

// CalculatePayPackage es una funcion pura: misma posicion, mismo resultado.
func CalculatePayPackage(job domain.Job) PayPackage {
	hours := defaultHoursPerWeek
	rate, ok := perDiemByState[job.State]
	if !ok {
		rate = perDiemStandard
	}

	lodging := rate.Lodging * 7
	meals := rate.Meals * 7

	floor := int(minTaxableHourly * float64(hours))
	taxable := job.WeeklyGross - lodging - meals
	if taxable < floor {
		taxable = floor
		remainder := job.WeeklyGross - taxable
		if remainder < 0 {
			remainder = 0
		}
		// Recortar primero alojamiento, despues comidas.
		if remainder < lodging {
			lodging = remainder
			meals = 0
		} else {
			meals = remainder - lodging
		}
	}

	return PayPackage{
		WeeklyGross:    job.WeeklyGross,
		HoursPerWeek:   hours,
		LodgingStipend: lodging,
		MealsStipend:   meals,
		TaxableWeekly:  taxable,
		TaxableHourly:  float64(taxable) / float64(hours),
	}
}
