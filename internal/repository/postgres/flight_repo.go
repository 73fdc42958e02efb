package postgres

import (
	"github.com/google/uuid"
	"github.com/jinzhu/gorm"

	"airport-service/internal/models"
	"airport-service/internal/repository"
)

type FlightRepo struct {
	db *gorm.DB
}

func (r *FlightRepo) CreateFlight(f *models.Flight) error {
	return translate(atomically(r.db, func(tx *gorm.DB) error {
		if err := tx.Create(f).Error; err != nil {
			return err
		}
		return assignCrew(tx, f.ID, f.CrewIDs())
	}))
}

func (r *FlightRepo) SaveFlight(f *models.Flight) error {
	return translate(atomically(r.db, func(tx *gorm.DB) error {
		if err := tx.Save(f).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM flight_crew WHERE flight_id = ?", f.ID).Error; err != nil {
			return err
		}
		return assignCrew(tx, f.ID, f.CrewIDs())
	}))
}

func assignCrew(tx *gorm.DB, flightID uuid.UUID, crew []uuid.UUID) error {
	for _, id := range crew {
		err := tx.Exec("INSERT INTO flight_crew (flight_id, crew_id) VALUES (?, ?)", flightID, id).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *FlightRepo) preloaded() *gorm.DB {
	return r.db.
		Preload("Route").
		Preload("Route.Source").
		Preload("Route.Destination").
		Preload("Airplane").
		Preload("Airplane.AirplaneType").
		Preload("Crew", func(db *gorm.DB) *gorm.DB {
			return db.Order("crew.last_name, crew.first_name")
		})
}

func (r *FlightRepo) GetFlight(id uuid.UUID) (models.Flight, error) {
	var f models.Flight
	if err := r.preloaded().Where("id = ?", id).First(&f).Error; err != nil {
		return f, translate(err)
	}
	flights := []models.Flight{f}
	err := r.fillTicketCounts(flights)
	return flights[0], err
}

func (r *FlightRepo) ListFlights(f repository.FlightFilter) ([]models.Flight, error) {
	q := r.preloaded().Order("departure_time")
	if f.SourceAirport != "" {
		q = q.Where("route_id IN (SELECT id FROM routes WHERE source_id IN (?))", r.airportMatch(f.SourceAirport))
	}
	if f.DestinationAirport != "" {
		q = q.Where("route_id IN (SELECT id FROM routes WHERE destination_id IN (?))", r.airportMatch(f.DestinationAirport))
	}
	if f.DepartureDate != nil {
		q = q.Where("DATE(departure_time) = ?", f.DepartureDate.Format("2006-01-02"))
	}
	if len(f.Crew) > 0 {
		q = q.Where("id IN (SELECT flight_id FROM flight_crew WHERE crew_id IN (?))", idStrings(f.Crew))
	}
	if f.AirplaneType != nil {
		q = q.Where("airplane_id IN (SELECT id FROM airplanes WHERE airplane_type_id = ?)", *f.AirplaneType)
	}

	out := []models.Flight{}
	if err := paginate(q, f.Page).Find(&out).Error; err != nil {
		return nil, translate(err)
	}
	return out, r.fillTicketCounts(out)
}

// airportMatch selects airports by id when ref parses as a uuid and by
// name fragment otherwise.
func (r *FlightRepo) airportMatch(ref string) *gorm.SqlExpr {
	if id, err := uuid.Parse(ref); err == nil {
		return gorm.Expr("SELECT id FROM airports WHERE id = ?", id)
	}
	return gorm.Expr("SELECT id FROM airports WHERE name ILIKE ?", contains(ref))
}

func (r *FlightRepo) fillTicketCounts(flights []models.Flight) error {
	ids := make([]uuid.UUID, len(flights))
	for i := range flights {
		ids[i] = flights[i].ID
	}
	counts, err := countBy(r.db, "tickets", "flight_id", ids)
	if err != nil {
		return err
	}
	for i := range flights {
		flights[i].TicketsCount = counts[flights[i].ID]
	}
	return nil
}

func (r *FlightRepo) DeleteFlight(id uuid.UUID) error {
	res := r.db.Where("id = ?", id).Delete(&models.Flight{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
