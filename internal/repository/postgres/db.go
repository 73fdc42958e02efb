package postgres

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/postgres"
	"github.com/pkg/errors"

	"airport-service/internal/models"
	"airport-service/internal/repository"
)

type Config struct {
	Host     string
	Port     string
	Username string
	Password string
	DbName   string
	SslMode  string
}

func (c Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s dbname=%s password=%s sslmode=%s",
		c.Host, c.Port, c.Username, c.DbName, c.Password, c.SslMode)
}

func ConnectDB(cfg Config) (*gorm.DB, error) {
	return ConnectURL(cfg.DSN())
}

func ConnectURL(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open("postgres", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open postgres")
	}
	if err := db.DB().Ping(); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "ping postgres")
	}
	return db, nil
}

// NewRepository wires every gorm repository to db. Associations are never
// saved implicitly: each write touches only its own row (plus the flight
// crew join rows, which the flight repository manages explicitly).
func NewRepository(db *gorm.DB) *repository.Repository {
	db = db.Set("gorm:save_associations", false)
	return &repository.Repository{
		Airports:      &AirportRepo{db: db},
		AirplaneTypes: &AirplaneTypeRepo{db: db},
		Airplanes:     &AirplaneRepo{db: db},
		Crews:         &CrewRepo{db: db},
		Routes:        &RouteRepo{db: db},
		Flights:       &FlightRepo{db: db},
		Orders:        &OrderRepo{db: db},
		Tickets:       &TicketRepo{db: db},
		Users:         &UserRepo{db: db},
		Tokens:        &TokenRepo{db: db},
		Transactor:    &txRunner{db: db},
	}
}

type txRunner struct {
	db *gorm.DB
}

func (t *txRunner) Atomic(fn func(tx *repository.Repository) error) error {
	return atomically(t.db, func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}

// atomically joins an already open transaction instead of nesting one.
func atomically(db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if _, inTx := db.CommonDB().(*sql.Tx); inTx {
		return fn(db)
	}
	return db.Transaction(fn)
}

var schema = []interface{}{
	&models.User{},
	&models.BlacklistedToken{},
	&models.Airport{},
	&models.AirplaneType{},
	&models.Airplane{},
	&models.Crew{},
	&models.Route{},
	&models.Flight{},
	&models.Order{},
	&models.Ticket{},
}

var foreignKeys = []struct {
	model interface{}
	table string
	field string
	dest  string
}{
	{model: &models.BlacklistedToken{}, field: "user_id", dest: "users(id)"},
	{model: &models.Airplane{}, field: "airplane_type_id", dest: "airplane_types(id)"},
	{model: &models.Route{}, field: "source_id", dest: "airports(id)"},
	{model: &models.Route{}, field: "destination_id", dest: "airports(id)"},
	{model: &models.Flight{}, field: "route_id", dest: "routes(id)"},
	{model: &models.Flight{}, field: "airplane_id", dest: "airplanes(id)"},
	{table: "flight_crew", field: "flight_id", dest: "flights(id)"},
	{table: "flight_crew", field: "crew_id", dest: "crew(id)"},
	{model: &models.Order{}, field: "user_id", dest: "users(id)"},
	{model: &models.Ticket{}, field: "flight_id", dest: "flights(id)"},
	{model: &models.Ticket{}, field: "order_id", dest: "orders(id)"},
}

// Migrate creates tables, composite unique indexes and cascading foreign keys.
// It is idempotent.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(schema...).Error; err != nil {
		return errors.Wrap(err, "auto migrate")
	}
	for _, fk := range foreignKeys {
		q := db
		if fk.table != "" {
			q = q.Table(fk.table)
		} else {
			q = q.Model(fk.model)
		}
		if err := q.AddForeignKey(fk.field, fk.dest, "CASCADE", "CASCADE").Error; err != nil {
			return errors.Wrapf(err, "foreign key %s -> %s", fk.field, fk.dest)
		}
	}
	return nil
}

func paginate(q *gorm.DB, p repository.Page) *gorm.DB {
	if p.Limit > 0 {
		q = q.Limit(p.Limit)
	}
	if p.Offset > 0 {
		q = q.Offset(p.Offset)
	}
	return q
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func contains(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

func idStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

// countBy returns count(*) of table rows grouped by column, for the given ids.
func countBy(db *gorm.DB, table, column string, ids []uuid.UUID) (map[uuid.UUID]int, error) {
	out := make(map[uuid.UUID]int, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := db.Table(table).
		Select(column+", count(*)").
		Where(column+" IN (?)", idStrings(ids)).
		Group(column).
		Rows()
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id uuid.UUID
			n  int
		)
		if err := rows.Scan(&id, &n); err != nil {
			return nil, errors.Wrapf(err, "scan %s counts", table)
		}
		out[id] = n
	}
	return out, errors.Wrapf(rows.Err(), "iterate %s counts", table)
}
