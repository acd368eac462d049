// Package seed generates demo records for development databases.
package seed

import (
	"math/rand/v2" // Deterministic pseudo random source
	"time"         // Record dates

	"spent_api/internal/domain" // Importing domain models

	"github.com/shopspring/decimal" // Fixed-point amounts
)

// Records generated for every month
const (
	IncomePerMonth  = 7
	ExpensePerMonth = 46
)

var expenseDescriptions = []string{
	"Supermercado Carrefour", "Gasolina Shell", "Restaurante La Parrilla", "Farmacia San Pablo",
	"Café Starbucks", "Metro transporte", "Cine Cineplex", "Pizza Dominos",
	"Librería Gandhi", "Taxi Uber", "Dentista consulta", "Peluquería Style",
	"Ferretería Home Depot", "Ropa Zara", "Electricidad CFE", "Agua potable",
	"Internet Telmex", "Seguro médico", "Gimnasio SportCity", "Lavandería Express",
	"Panadería La Espiga", "Verdulería Central", "Carnicería Premium", "Pescadería Mariscos",
	"Zapatería Flexi", "Juguetería Toy Story", "Papelería Office Depot", "Floristería Rosa",
	"Veterinaria Pets", "Mecánico AutoFix", "Banco comisión", "Parking centro",
	"Bus urbano", "Revista Proceso", "Helados Häagen-Dazs", "Barbería Vintage",
	"Óptica Devlyn", "Tintorería Clean", "Gasolinera Pemex", "Mercado San Juan",
	"Hospital consulta", "Clínica análisis", "Laboratorio estudios", "Radiografía dental",
	"Multa tránsito", "Estacionamiento", "Autopista peaje", "Reparación celular",
}

var incomeDescriptions = []string{
	"Salario mensual", "Bonus trimestral", "Freelance proyecto", "Venta usados",
	"Intereses bancarios", "Dividendos inversión", "Reembolso seguro", "Regalo cumpleaños",
	"Comisión ventas", "Trabajo extra", "Consultoría", "Alquiler inmueble",
}

var expenseCategories = []string{
	"Alimentación", "Transporte", "Salud", "Entretenimiento", "Hogar", "Ropa",
	"Servicios", "Educación", "Belleza", "Tecnología", "Mascotas", "Deportes",
	"Viajes", "Regalos", "Seguros", "Impuestos", "Mantenimiento", "Otros",
}

var incomeCategories = []string{
	"Salario", "Bonus", "Freelance", "Ventas", "Inversiones", "Otros ingresos",
}

// Generator produces fixture records from a seeded random source
type Generator struct {
	rng *rand.Rand
}

// NewGenerator returns a generator; equal seeds give equal output
func NewGenerator(seed uint64) *Generator {
	return &Generator{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Range generates every month from fromYear/1 up to and including untilYear/untilMonth
func (g *Generator) Range(fromYear, untilYear int, untilMonth time.Month) []domain.Spent {
	var out []domain.Spent
	for year := fromYear; year <= untilYear; year++ {
		for month := time.January; month <= time.December; month++ {
			if year == untilYear && month > untilMonth {
				break
			}
			out = append(out, g.Month(int(month), year)...)
		}
	}
	return out
}

// Month generates the income and expense records of one month
func (g *Generator) Month(month, year int) []domain.Spent {
	days := domain.DaysIn(month, year)
	out := make([]domain.Spent, 0, IncomePerMonth+ExpensePerMonth)
	for i := 0; i < IncomePerMonth; i++ {
		cents := g.between(50000, 500000) // 500.00 to 5000.00
		out = append(out, g.record(incomeDescriptions, incomeCategories, cents, month, year, days, 8, 18))
	}
	for i := 0; i < ExpensePerMonth; i++ {
		cents := -g.between(500, 50000) // -5.00 to -500.00
		out = append(out, g.record(expenseDescriptions, expenseCategories, cents, month, year, days, 6, 23))
	}
	return out
}

func (g *Generator) record(descs, cats []string, cents int64, month, year, days, minHour, maxHour int) domain.Spent {
	desc := descs[g.rng.IntN(len(descs))]
	cat := cats[g.rng.IntN(len(cats))]
	day := int(g.between(1, int64(days)))
	hour := int(g.between(int64(minHour), int64(maxHour)))
	minute := g.rng.IntN(60)
	return domain.Spent{
		Description: &desc,
		Category:    &cat,
		Amount:      decimal.New(cents, -2),
		Date:        time.Date(year, time.Month(month), day, hour, minute, 0, 0, time.UTC),
		Month:       month,
		Year:        year,
	}
}

// between returns a value in [lo, hi]
func (g *Generator) between(lo, hi int64) int64 {
	return lo + g.rng.Int64N(hi-lo+1)
}
