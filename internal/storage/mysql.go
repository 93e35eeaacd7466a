package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"ticket-marketplace/internal/config"
	"ticket-marketplace/internal/logger"
	"ticket-marketplace/internal/models"

	"github.com/go-sql-driver/mysql"
)

type MySQLStore struct {
	db  *sql.DB
	log *logger.Logger
}

func NewMySQLStore(cfg config.DatabaseConfig, log *logger.Logger) (*MySQLStore, error) {
	log.LogDatabase("CONNECT", "mysql", fmt.Sprintf("Connecting to MySQL at %s:%s", cfg.Host, cfg.Port))

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.Username, cfg.Password, cfg.Host, cfg.Port, cfg.Database)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		log.Error("DATABASE", "Failed to open MySQL connection: "+err.Error())
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.MaxLifetime)

	if err := db.Ping(); err != nil {
		log.Error("DATABASE", "Failed to ping MySQL: "+err.Error())
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &MySQLStore{
		db:  db,
		log: log,
	}

	if err := store.initTables(); err != nil {
		log.Error("DATABASE", "Failed to initialize tables: "+err.Error())
		return nil, fmt.Errorf("failed to initialize tables: %w", err)
	}

	log.LogDatabase("SUCCESS", "mysql", "MySQL connection established and tables initialized")
	return store, nil
}

func (s *MySQLStore) initTables() error {
	s.log.LogDatabase("MIGRATE", "mysql", "Creating marketplace tables if not exist")

	queries := []string{
		`CREATE TABLE IF NOT EXISTS users (
            id VARCHAR(64) PRIMARY KEY,
            email VARCHAR(255) NOT NULL,
            name VARCHAR(255) NOT NULL,
            role VARCHAR(20) NOT NULL,
            fraud BOOLEAN NOT NULL DEFAULT FALSE,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
            last_logged_in TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
            UNIQUE KEY uniq_email (email)
        ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`,
		`CREATE TABLE IF NOT EXISTS tickets (
            id VARCHAR(64) PRIMARY KEY,
            title VARCHAR(255) NOT NULL,
            image TEXT,
            price DECIMAL(10,2) NOT NULL,
            quantity INT NOT NULL,
            vendor_email VARCHAR(255) NOT NULL,
            vendor_name VARCHAR(255) NOT NULL,
            status VARCHAR(20) NOT NULL,
            advertise BOOLEAN NOT NULL DEFAULT FALSE,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
            INDEX idx_status (status),
            INDEX idx_vendor_email (vendor_email),
            INDEX idx_advertise (advertise),
            CONSTRAINT chk_quantity CHECK (quantity >= 0)
        ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`,
		`CREATE TABLE IF NOT EXISTS bookings (
            id VARCHAR(64) PRIMARY KEY,
            ticket_id VARCHAR(64) NOT NULL,
            customer_email VARCHAR(255) NOT NULL,
            customer_name VARCHAR(255) NOT NULL,
            vendor_email VARCHAR(255) NOT NULL,
            vendor_name VARCHAR(255) NOT NULL,
            quantity INT NOT NULL,
            status VARCHAR(20) NOT NULL,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
            INDEX idx_customer_email (customer_email),
            INDEX idx_vendor_email (vendor_email),
            INDEX idx_ticket_id (ticket_id)
        ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`,
		`CREATE TABLE IF NOT EXISTS payments (
            payment_id VARCHAR(64) PRIMARY KEY,
            transaction_id VARCHAR(255) NOT NULL,
            ticket_id VARCHAR(64) NOT NULL,
            booking_id VARCHAR(64) NOT NULL,
            customer_email VARCHAR(255) NOT NULL,
            customer_name VARCHAR(255) NOT NULL,
            vendor_email VARCHAR(255) NOT NULL,
            vendor_name VARCHAR(255) NOT NULL,
            quantity INT NOT NULL,
            price DECIMAL(10,2) NOT NULL,
            created_date TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
            UNIQUE KEY uniq_transaction_id (transaction_id),
            INDEX idx_booking_id (booking_id)
        ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	s.log.LogDatabase("SUCCESS", "mysql", "Marketplace tables ready")
	return nil
}

// --- Users ---

func (s *MySQLStore) SaveUser(user *models.User) error {
	s.log.LogDatabase("INSERT", "users", fmt.Sprintf("Saving user %s", user.Email))

	query := `
    INSERT INTO users (id, email, name, role, fraud, created_at, last_logged_in)
    VALUES (?, ?, ?, ?, ?, ?, ?)
    `

	_, err := s.db.Exec(query,
		user.ID, user.Email, user.Name, user.Role, user.Fraud, user.CreatedAt, user.LastLoggedIn,
	)
	if err != nil {
		s.log.Error("DATABASE", fmt.Sprintf("Failed to save user %s: %s", user.Email, err.Error()))
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

func (s *MySQLStore) GetUserByEmail(email string) (*models.User, error) {
	query := `
    SELECT id, email, name, role, fraud, created_at, last_logged_in
    FROM users WHERE email = ?
    `

	user := &models.User{}
	err := s.db.QueryRow(query, email).Scan(
		&user.ID, &user.Email, &user.Name, &user.Role, &user.Fraud, &user.CreatedAt, &user.LastLoggedIn,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		s.log.Error("DATABASE", fmt.Sprintf("Failed to get user %s: %s", email, err.Error()))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *MySQLStore) TouchUserLogin(email string) error {
	_, err := s.db.Exec(`UPDATE users SET last_logged_in = ? WHERE email = ?`, time.Now(), email)
	if err != nil {
		return fmt.Errorf("failed to touch user login: %w", err)
	}
	return nil
}

func (s *MySQLStore) ListUsers() ([]*models.User, error) {
	rows, err := s.db.Query(`
    SELECT id, email, name, role, fraud, created_at, last_logged_in
    FROM users ORDER BY created_at DESC
    `)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user := &models.User{}
		if err := rows.Scan(&user.ID, &user.Email, &user.Name, &user.Role, &user.Fraud, &user.CreatedAt, &user.LastLoggedIn); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (s *MySQLStore) UpdateUserRole(id string, role models.UserRole) error {
	res, err := s.db.Exec(`UPDATE users SET role = ? WHERE id = ?`, role, id)
	if err != nil {
		return fmt.Errorf("failed to update user role: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MySQLStore) SetUserFraud(id string, fraud bool) error {
	res, err := s.db.Exec(`UPDATE users SET fraud = ? WHERE id = ?`, fraud, id)
	if err != nil {
		return fmt.Errorf("failed to update fraud flag: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Tickets ---

func (s *MySQLStore) SaveTicket(ticket *models.Ticket) error {
	s.log.LogDatabase("INSERT", "tickets", fmt.Sprintf("Saving ticket %s", ticket.ID))

	query := `
    INSERT INTO tickets (id, title, image, price, quantity, vendor_email, vendor_name, status, advertise, created_at)
    VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `

	_, err := s.db.Exec(query,
		ticket.ID, ticket.Title, ticket.Image, ticket.Price, ticket.Quantity,
		ticket.Vendor.Email, ticket.Vendor.Name, ticket.Status, ticket.Advertise, ticket.CreatedAt,
	)
	if err != nil {
		s.log.Error("DATABASE", fmt.Sprintf("Failed to save ticket %s: %s", ticket.ID, err.Error()))
		return fmt.Errorf("failed to save ticket: %w", err)
	}
	return nil
}

const ticketColumns = `id, title, image, price, quantity, vendor_email, vendor_name, status, advertise, created_at`

func scanTicket(row interface{ Scan(...interface{}) error }) (*models.Ticket, error) {
	ticket := &models.Ticket{}
	err := row.Scan(
		&ticket.ID, &ticket.Title, &ticket.Image, &ticket.Price, &ticket.Quantity,
		&ticket.Vendor.Email, &ticket.Vendor.Name, &ticket.Status, &ticket.Advertise, &ticket.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

func (s *MySQLStore) GetTicket(id string) (*models.Ticket, error) {
	ticket, err := scanTicket(s.db.QueryRow(`SELECT `+ticketColumns+` FROM tickets WHERE id = ?`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		s.log.Error("DATABASE", fmt.Sprintf("Failed to get ticket %s: %s", id, err.Error()))
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}
	return ticket, nil
}

func (s *MySQLStore) listTickets(query string, args ...interface{}) ([]*models.Ticket, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}
	defer rows.Close()

	var tickets []*models.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ticket: %w", err)
		}
		tickets = append(tickets, ticket)
	}
	return tickets, rows.Err()
}

func (s *MySQLStore) ListTickets() ([]*models.Ticket, error) {
	return s.listTickets(`SELECT ` + ticketColumns + ` FROM tickets ORDER BY created_at DESC`)
}

func (s *MySQLStore) ListTicketsByStatus(status models.TicketStatus) ([]*models.Ticket, error) {
	return s.listTickets(`SELECT `+ticketColumns+` FROM tickets WHERE status = ? ORDER BY created_at DESC`, status)
}

func (s *MySQLStore) ListTicketsByVendor(email string) ([]*models.Ticket, error) {
	return s.listTickets(`SELECT `+ticketColumns+` FROM tickets WHERE vendor_email = ? ORDER BY created_at DESC`, email)
}

func (s *MySQLStore) UpdateTicketStatus(id string, status models.TicketStatus) error {
	s.log.LogDatabase("UPDATE", "tickets", fmt.Sprintf("Setting ticket %s status to %s", id, status))

	res, err := s.db.Exec(`UPDATE tickets SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update ticket status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MySQLStore) SetTicketAdvertise(id string, advertise bool) error {
	res, err := s.db.Exec(`UPDATE tickets SET advertise = ? WHERE id = ?`, advertise, id)
	if err != nil {
		return fmt.Errorf("failed to update advertise flag: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MySQLStore) CountAdvertisedTickets() (int, error) {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM tickets WHERE advertise = TRUE`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count advertised tickets: %w", err)
	}
	return count, nil
}

// --- Bookings ---

func (s *MySQLStore) SaveBooking(booking *models.Booking) error {
	s.log.LogDatabase("INSERT", "bookings", fmt.Sprintf("Saving booking %s", booking.ID))

	query := `
    INSERT INTO bookings (id, ticket_id, customer_email, customer_name, vendor_email, vendor_name, quantity, status, created_at)
    VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
    `

	_, err := s.db.Exec(query,
		booking.ID, booking.TicketID, booking.Customer.Email, booking.Customer.Name,
		booking.Vendor.Email, booking.Vendor.Name, booking.Quantity, booking.Status, booking.CreatedAt,
	)
	if err != nil {
		s.log.Error("DATABASE", fmt.Sprintf("Failed to save booking %s: %s", booking.ID, err.Error()))
		return fmt.Errorf("failed to save booking: %w", err)
	}
	return nil
}

func (s *MySQLStore) GetBooking(id string) (*models.Booking, error) {
	query := `
    SELECT id, ticket_id, customer_email, customer_name, vendor_email, vendor_name, quantity, status, created_at
    FROM bookings WHERE id = ?
    `

	booking := &models.Booking{}
	err := s.db.QueryRow(query, id).Scan(
		&booking.ID, &booking.TicketID, &booking.Customer.Email, &booking.Customer.Name,
		&booking.Vendor.Email, &booking.Vendor.Name, &booking.Quantity, &booking.Status, &booking.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		s.log.Error("DATABASE", fmt.Sprintf("Failed to get booking %s: %s", id, err.Error()))
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return booking, nil
}

// ListBookedTickets joins a customer's bookings with the listing details.
func (s *MySQLStore) ListBookedTickets(customerEmail string) ([]*models.BookedTicket, error) {
	query := `
    SELECT b.id, b.quantity, b.status, b.created_at, t.title, t.image, t.price
    FROM bookings b
    JOIN tickets t ON t.id = b.ticket_id
    WHERE b.customer_email = ?
    ORDER BY b.created_at DESC
    `

	rows, err := s.db.Query(query, customerEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to list booked tickets: %w", err)
	}
	defer rows.Close()

	var booked []*models.BookedTicket
	for rows.Next() {
		bt := &models.BookedTicket{}
		if err := rows.Scan(&bt.BookingID, &bt.Quantity, &bt.Status, &bt.CreatedAt, &bt.TicketTitle, &bt.TicketImage, &bt.TicketPrice); err != nil {
			return nil, fmt.Errorf("failed to scan booked ticket: %w", err)
		}
		booked = append(booked, bt)
	}
	return booked, rows.Err()
}

// ListBookingRequests is the vendor-side view: bookings for the vendor's
// listings projected with the ticket title and price.
func (s *MySQLStore) ListBookingRequests(vendorEmail string) ([]*models.BookingRequest, error) {
	query := `
    SELECT b.id, b.customer_email, b.customer_name, b.vendor_email, b.vendor_name, b.status, b.quantity, t.price, t.title
    FROM bookings b
    JOIN tickets t ON t.id = b.ticket_id
    WHERE b.vendor_email = ?
    ORDER BY b.created_at DESC
    `

	rows, err := s.db.Query(query, vendorEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to list booking requests: %w", err)
	}
	defer rows.Close()

	var requests []*models.BookingRequest
	for rows.Next() {
		br := &models.BookingRequest{}
		if err := rows.Scan(&br.BookingID, &br.Customer.Email, &br.Customer.Name, &br.Vendor.Email, &br.Vendor.Name,
			&br.Status, &br.Quantity, &br.TicketPrice, &br.TicketTitle); err != nil {
			return nil, fmt.Errorf("failed to scan booking request: %w", err)
		}
		requests = append(requests, br)
	}
	return requests, rows.Err()
}

func (s *MySQLStore) UpdateBookingStatus(id string, status string) error {
	s.log.LogDatabase("UPDATE", "bookings", fmt.Sprintf("Setting booking %s status to %s", id, status))

	res, err := s.db.Exec(`UPDATE bookings SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Payments ---

func (s *MySQLStore) GetPaymentByTransactionID(transactionID string) (*models.Payment, error) {
	query := `
    SELECT payment_id, transaction_id, ticket_id, booking_id, customer_email, customer_name, vendor_email, vendor_name, quantity, price, created_date
    FROM payments WHERE transaction_id = ?
    `

	payment := &models.Payment{}
	err := s.db.QueryRow(query, transactionID).Scan(
		&payment.PaymentID, &payment.TransactionID, &payment.TicketID, &payment.BookingID,
		&payment.Customer.Email, &payment.Customer.Name, &payment.Vendor.Email, &payment.Vendor.Name,
		&payment.Quantity, &payment.Price, &payment.CreatedDate,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		s.log.Error("DATABASE", fmt.Sprintf("Failed to get payment for transaction %s: %s", transactionID, err.Error()))
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return payment, nil
}

func (s *MySQLStore) ApplyPayment(ctx context.Context, payment *models.Payment) (*ApplyResult, error) {
	s.log.LogDatabase("TX", "payments", fmt.Sprintf("Applying payment %s for transaction %s", payment.PaymentID, payment.TransactionID))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
    INSERT INTO payments (payment_id, transaction_id, ticket_id, booking_id, customer_email, customer_name, vendor_email, vendor_name, quantity, price, created_date)
    VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `,
		payment.PaymentID, payment.TransactionID, payment.TicketID, payment.BookingID,
		payment.Customer.Email, payment.Customer.Name, payment.Vendor.Email, payment.Vendor.Name,
		payment.Quantity, payment.Price, payment.CreatedDate,
	)
	if err != nil {
		if mysqlErr, ok := err.(*mysql.MySQLError); ok && mysqlErr.Number == 1062 {
			// Lost the race against a concurrent completion for the same
			// transaction id; the unique key settles it.
			return nil, ErrDuplicateTransaction
		}
		s.log.Error("DATABASE", fmt.Sprintf("Failed to insert payment %s: %s", payment.PaymentID, err.Error()))
		return nil, fmt.Errorf("failed to insert payment: %w", err)
	}

	result := &ApplyResult{}

	// Guarded decrement: no row changes if the remaining quantity is short.
	res, err := tx.ExecContext(ctx,
		`UPDATE tickets SET quantity = quantity - ? WHERE id = ? AND quantity >= ?`,
		payment.Quantity, payment.TicketID, payment.Quantity,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to decrement ticket quantity: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		result.InventoryApplied = true
	}

	res, err = tx.ExecContext(ctx, `UPDATE bookings SET status = ? WHERE id = ?`, models.BookingPaid, payment.BookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to mark booking paid: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		result.BookingPaid = true
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit payment: %w", err)
	}

	s.log.LogDatabase("SUCCESS", "payments", fmt.Sprintf("Payment %s applied (inventory: %t, booking: %t)",
		payment.PaymentID, result.InventoryApplied, result.BookingPaid))
	return result, nil
}

func (s *MySQLStore) Close() error {
	s.log.LogDatabase("CLOSE", "mysql", "Closing MySQL connection")
	return s.db.Close()
}

func (s *MySQLStore) HealthCheck() error {
	return s.db.Ping()
}
