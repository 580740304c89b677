// Package storage implements the PostgreSQL persistence layer for clients,
// properties, interest lists and notifications.
package storage

import (
	"context"
	"database/sql"
	"time"

	apperrors "github.com/martin-coser/ArqViewBack-sub000/internal/common/errors"
	"github.com/martin-coser/ArqViewBack-sub000/internal/models"
)

const queryTimeout = 10 * time.Second

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const clientColumns = `
	c.id, c.first_name, c.last_name, a.email, COALESCE(a.phone, ''),
	l.id, l.name, COALESCE(l.province, '')`

const clientBaseQuery = `
SELECT` + clientColumns + `
FROM clients c
JOIN accounts a ON a.client_id = c.id
JOIN locations l ON l.id = c.location_id`

// GetClient loads a client with its account contact data. Returns a
// CLIENT_NOT_FOUND error when the id does not exist.
func (s *Store) GetClient(ctx context.Context, clientID int64) (*models.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	row := s.db.QueryRowContext(ctx, clientBaseQuery+` WHERE c.id = $1`, clientID)
	client, err := scanClient(row)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewClientNotFoundError(clientID)
	}
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("client", err)
	}
	return client, nil
}

// ListClients returns every registered client.
func (s *Store) ListClients(ctx context.Context) ([]models.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, clientBaseQuery+` ORDER BY c.id`)
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("clients", err)
	}
	defer rows.Close()

	var clients []models.Client
	for rows.Next() {
		client, err := scanClient(rows)
		if err != nil {
			return nil, apperrors.NewQueryExecutionFailedError("clients", err)
		}
		clients = append(clients, *client)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("clients", err)
	}
	return clients, nil
}

const propertyColumns = `
	p.id, p.name, COALESCE(p.description, ''), COALESCE(p.address, ''),
	p.price, p.surface, p.bathrooms, p.bedrooms, p.rooms,
	t.id, t.name,
	l.id, l.name, COALESCE(l.province, ''),
	ag.id, ag.name, ag.plan`

const propertyBaseQuery = `
SELECT` + propertyColumns + `
FROM properties p
JOIN property_types t ON t.id = p.property_type_id
JOIN locations l ON l.id = p.location_id
LEFT JOIN agencies ag ON ag.id = p.agency_id`

// GetProperty loads one listing with its type, location and owning agency.
// Returns a PROPERTY_NOT_FOUND error when the id does not exist.
func (s *Store) GetProperty(ctx context.Context, propertyID int64) (*models.Property, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	row := s.db.QueryRowContext(ctx, propertyBaseQuery+` WHERE p.id = $1`, propertyID)
	property, err := scanProperty(row)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewPropertyNotFoundError(propertyID)
	}
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("property", err)
	}
	return property, nil
}

// ListProperties returns the full catalog.
func (s *Store) ListProperties(ctx context.Context) ([]models.Property, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, propertyBaseQuery+` ORDER BY p.id`)
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("properties", err)
	}
	defer rows.Close()
	return collectProperties(rows)
}

// InterestProperties returns the properties saved on a client's interest
// list, in the order they were added. An empty slice means the client has no
// list or an empty one.
func (s *Store) InterestProperties(ctx context.Context, clientID int64) ([]models.Property, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := propertyBaseQuery + `
JOIN interest_list_properties ilp ON ilp.property_id = p.id
JOIN interest_lists il ON il.id = ilp.interest_list_id
WHERE il.client_id = $1
ORDER BY ilp.id`

	rows, err := s.db.QueryContext(ctx, query, clientID)
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("interest list", err)
	}
	defer rows.Close()
	return collectProperties(rows)
}

// ListInterestLists returns every non-empty interest list keyed by client,
// used for notification fan-out.
func (s *Store) ListInterestLists(ctx context.Context) ([]models.InterestList, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
SELECT il.client_id,` + propertyColumns + `
FROM interest_lists il
JOIN interest_list_properties ilp ON ilp.interest_list_id = il.id
JOIN properties p ON p.id = ilp.property_id
JOIN property_types t ON t.id = p.property_type_id
JOIN locations l ON l.id = p.location_id
LEFT JOIN agencies ag ON ag.id = p.agency_id
ORDER BY il.client_id, ilp.id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("interest lists", err)
	}
	defer rows.Close()

	var lists []models.InterestList
	for rows.Next() {
		var clientID int64
		property, err := scanPropertyWith(rows, &clientID)
		if err != nil {
			return nil, apperrors.NewQueryExecutionFailedError("interest lists", err)
		}
		if len(lists) == 0 || lists[len(lists)-1].ClientID != clientID {
			lists = append(lists, models.InterestList{ClientID: clientID})
		}
		last := &lists[len(lists)-1]
		last.Properties = append(last.Properties, *property)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("interest lists", err)
	}
	return lists, nil
}

// CreateNotification persists a notification and fills in its generated id.
func (s *Store) CreateNotification(ctx context.Context, n *models.Notification) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
INSERT INTO notifications (message, type, client_id, property_id, created_at, read)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id`

	err := s.db.QueryRowContext(ctx, query,
		n.Message, n.Type, n.ClientID, n.PropertyID, n.CreatedAt, n.Read,
	).Scan(&n.ID)
	if err != nil {
		return apperrors.NewDatabaseInsertFailedError(err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanClient(row rowScanner) (*models.Client, error) {
	var c models.Client
	err := row.Scan(
		&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Phone,
		&c.Location.ID, &c.Location.Name, &c.Location.Province,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func scanProperty(row rowScanner) (*models.Property, error) {
	return scanPropertyWith(row)
}

// scanPropertyWith scans the property columns, prepending any extra leading
// destinations (such as a grouping key selected before the property).
func scanPropertyWith(row rowScanner, leading ...interface{}) (*models.Property, error) {
	var p models.Property
	var agencyID sql.NullInt64
	var agencyName, agencyPlan sql.NullString

	dest := append(leading,
		&p.ID, &p.Name, &p.Description, &p.Address,
		&p.Price, &p.Surface, &p.Bathrooms, &p.Bedrooms, &p.Rooms,
		&p.Type.ID, &p.Type.Name,
		&p.Location.ID, &p.Location.Name, &p.Location.Province,
		&agencyID, &agencyName, &agencyPlan,
	)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	if agencyID.Valid {
		p.Agency = &models.Agency{
			ID:   agencyID.Int64,
			Name: agencyName.String,
			Plan: models.SubscriptionPlan(agencyPlan.String),
		}
	}
	return &p, nil
}

func collectProperties(rows *sql.Rows) ([]models.Property, error) {
	var properties []models.Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, apperrors.NewQueryExecutionFailedError("properties", err)
		}
		properties = append(properties, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("properties", err)
	}
	return properties, nil
}
