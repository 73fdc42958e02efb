package postgres

import (
	"github.com/google/uuid"
	"github.com/jinzhu/gorm"

	"airport-service/internal/models"
	"airport-service/internal/repository"
)

type AirportRepo struct {
	db *gorm.DB
}

func (r *AirportRepo) CreateAirport(a *models.Airport) error {
	return translate(r.db.Create(a).Error)
}

func (r *AirportRepo) SaveAirport(a *models.Airport) error {
	return translate(r.db.Save(a).Error)
}

func (r *AirportRepo) GetAirport(id uuid.UUID) (models.Airport, error) {
	var a models.Airport
	err := r.db.Where("id = ?", id).First(&a).Error
	return a, translate(err)
}

func (r *AirportRepo) ListAirports(f repository.AirportFilter) ([]models.Airport, error) {
	q := r.db.Order("name")
	if f.Name != "" {
		q = q.Where("name ILIKE ?", contains(f.Name))
	}
	if f.ClosestBigCity != "" {
		q = q.Where("closest_big_city ILIKE ?", contains(f.ClosestBigCity))
	}
	out := []models.Airport{}
	err := paginate(q, f.Page).Find(&out).Error
	return out, translate(err)
}

type AirplaneTypeRepo struct {
	db *gorm.DB
}

func (r *AirplaneTypeRepo) CreateAirplaneType(t *models.AirplaneType) error {
	return translate(r.db.Create(t).Error)
}

func (r *AirplaneTypeRepo) SaveAirplaneType(t *models.AirplaneType) error {
	return translate(r.db.Save(t).Error)
}

func (r *AirplaneTypeRepo) GetAirplaneType(id uuid.UUID) (models.AirplaneType, error) {
	var t models.AirplaneType
	if err := r.db.Where("id = ?", id).First(&t).Error; err != nil {
		return t, translate(err)
	}
	counts, err := countBy(r.db, "airplanes", "airplane_type_id", []uuid.UUID{t.ID})
	t.AirplanesCount = counts[t.ID]
	return t, err
}

func (r *AirplaneTypeRepo) ListAirplaneTypes(f repository.AirplaneTypeFilter) ([]models.AirplaneType, error) {
	q := r.db.Order("name")
	if f.Name != "" {
		q = q.Where("name ILIKE ?", contains(f.Name))
	}
	out := []models.AirplaneType{}
	if err := paginate(q, f.Page).Find(&out).Error; err != nil {
		return nil, translate(err)
	}

	ids := make([]uuid.UUID, len(out))
	for i := range out {
		ids[i] = out[i].ID
	}
	counts, err := countBy(r.db, "airplanes", "airplane_type_id", ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].AirplanesCount = counts[out[i].ID]
	}
	return out, nil
}

type AirplaneRepo struct {
	db *gorm.DB
}

func (r *AirplaneRepo) CreateAirplane(a *models.Airplane) error {
	return translate(r.db.Create(a).Error)
}

func (r *AirplaneRepo) SaveAirplane(a *models.Airplane) error {
	return translate(r.db.Save(a).Error)
}

func (r *AirplaneRepo) GetAirplane(id uuid.UUID) (models.Airplane, error) {
	var a models.Airplane
	if err := r.db.Preload("AirplaneType").Where("id = ?", id).First(&a).Error; err != nil {
		return a, translate(err)
	}
	counts, err := countBy(r.db, "airplanes", "airplane_type_id", []uuid.UUID{a.AirplaneTypeID})
	a.AirplaneType.AirplanesCount = counts[a.AirplaneTypeID]
	return a, err
}

func (r *AirplaneRepo) ListAirplanes(f repository.AirplaneFilter) ([]models.Airplane, error) {
	q := r.db.Preload("AirplaneType").Order("airplane_type_id, name")
	if f.Name != "" {
		q = q.Where("name ILIKE ?", contains(f.Name))
	}
	if f.AirplaneTypeName != "" {
		q = q.Where("airplane_type_id IN (SELECT id FROM airplane_types WHERE name ILIKE ?)", contains(f.AirplaneTypeName))
	}
	if f.RowsGt > 0 {
		q = q.Where("rows > ?", f.RowsGt)
	}
	if f.RowsLt > 0 {
		q = q.Where("rows < ?", f.RowsLt)
	}
	out := []models.Airplane{}
	err := paginate(q, f.Page).Find(&out).Error
	return out, translate(err)
}

type CrewRepo struct {
	db *gorm.DB
}

func (r *CrewRepo) CreateCrew(c *models.Crew) error {
	return translate(r.db.Create(c).Error)
}

func (r *CrewRepo) SaveCrew(c *models.Crew) error {
	return translate(r.db.Save(c).Error)
}

func (r *CrewRepo) GetCrew(id uuid.UUID) (models.Crew, error) {
	var c models.Crew
	err := r.db.Where("id = ?", id).First(&c).Error
	return c, translate(err)
}

func (r *CrewRepo) ListCrew(f repository.CrewFilter) ([]models.Crew, error) {
	q := r.db.Order("last_name, first_name")
	if f.FirstName != "" {
		q = q.Where("first_name ILIKE ?", contains(f.FirstName))
	}
	if f.LastName != "" {
		q = q.Where("last_name ILIKE ?", contains(f.LastName))
	}
	out := []models.Crew{}
	if err := paginate(q, f.Page).Find(&out).Error; err != nil {
		return nil, translate(err)
	}

	ids := make([]uuid.UUID, len(out))
	for i := range out {
		ids[i] = out[i].ID
	}
	counts, err := countBy(r.db, "flight_crew", "crew_id", ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].FlightsCount = counts[out[i].ID]
	}
	return out, nil
}

// FindCrew returns the crew members among ids that exist.
func (r *CrewRepo) FindCrew(ids []uuid.UUID) ([]models.Crew, error) {
	out := []models.Crew{}
	if len(ids) == 0 {
		return out, nil
	}
	err := r.db.Where("id IN (?)", idStrings(ids)).Order("last_name, first_name").Find(&out).Error
	return out, translate(err)
}

type RouteRepo struct {
	db *gorm.DB
}

func (r *RouteRepo) CreateRoute(rt *models.Route) error {
	return translate(r.db.Create(rt).Error)
}

func (r *RouteRepo) SaveRoute(rt *models.Route) error {
	return translate(r.db.Save(rt).Error)
}

func (r *RouteRepo) GetRoute(id uuid.UUID) (models.Route, error) {
	var rt models.Route
	err := r.db.Preload("Source").Preload("Destination").Where("id = ?", id).First(&rt).Error
	return rt, translate(err)
}

func (r *RouteRepo) ListRoutes(f repository.RouteFilter) ([]models.Route, error) {
	q := r.db.Preload("Source").Preload("Destination").Order("source_id, destination_id")
	if f.SourceName != "" {
		q = q.Where("source_id IN (SELECT id FROM airports WHERE name ILIKE ?)", contains(f.SourceName))
	}
	if f.DestinationName != "" {
		q = q.Where("destination_id IN (SELECT id FROM airports WHERE name ILIKE ?)", contains(f.DestinationName))
	}
	if f.DistanceGt > 0 {
		q = q.Where("distance > ?", f.DistanceGt)
	}
	if f.DistanceLt > 0 {
		q = q.Where("distance < ?", f.DistanceLt)
	}
	out := []models.Route{}
	err := paginate(q, f.Page).Find(&out).Error
	return out, translate(err)
}
