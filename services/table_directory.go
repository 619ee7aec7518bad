package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/yeremiapane/restaurant-ordering/booking"
	"github.com/yeremiapane/restaurant-ordering/models"
)

// QRPrefix is the payload prefix printed on table QR codes: "table_<number>".
const QRPrefix = "table_"

var ErrInvalidQR = errors.New("invalid QR code")

// TableDirectory resolves table ids, numbers and QR payloads to table records and
// applies staff status changes.
type TableDirectory struct {
	db *gorm.DB
}

func NewTableDirectory(db *gorm.DB) *TableDirectory {
	return &TableDirectory{db: db}
}

func (d *TableDirectory) Get(ctx context.Context, id uint) (*models.Table, error) {
	var t models.Table
	if err := d.db.WithContext(ctx).First(&t, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTableNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (d *TableDirectory) ByNumber(ctx context.Context, number int) (*models.Table, error) {
	var t models.Table
	if err := d.db.WithContext(ctx).Where("number = ?", number).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTableNotFound
		}
		return nil, err
	}
	return &t, nil
}

// List returns tables ordered by number, filtered by status when non-empty and by
// the capacity gate when guests > 0.
func (d *TableDirectory) List(ctx context.Context, status string, guests int) ([]models.Table, error) {
	q := d.db.WithContext(ctx).Order("number asc")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var tables []models.Table
	if err := q.Find(&tables).Error; err != nil {
		return nil, err
	}
	if guests > 0 {
		tables = booking.FitTables(tables, guests)
	}
	return tables, nil
}

// Available lists the available tables that can seat guests.
func (d *TableDirectory) Available(ctx context.Context, guests int) ([]models.Table, error) {
	return d.List(ctx, models.TableAvailable, guests)
}

// ParseQR extracts the table number from a "table_<number>" payload.
func ParseQR(payload string) (int, error) {
	payload = strings.TrimSpace(payload)
	if !strings.HasPrefix(payload, QRPrefix) {
		return 0, ErrInvalidQR
	}
	n, err := strconv.Atoi(strings.TrimPrefix(payload, QRPrefix))
	if err != nil || n <= 0 {
		return 0, ErrInvalidQR
	}
	return n, nil
}

// QRPayload is the inverse of ParseQR.
func QRPayload(number int) string {
	return QRPrefix + strconv.Itoa(number)
}

// ResolveQR maps a scanned payload to an available table.
func (d *TableDirectory) ResolveQR(ctx context.Context, payload string) (*models.Table, error) {
	n, err := ParseQR(payload)
	if err != nil {
		return nil, err
	}
	t, err := d.ByNumber(ctx, n)
	if err != nil {
		return nil, err
	}
	if t.Status != models.TableAvailable {
		return nil, fmt.Errorf("table %d is %s: %w", t.Number, t.Status, ErrTableUnavailable)
	}
	return t, nil
}

func (d *TableDirectory) Create(ctx context.Context, t *models.Table) error {
	if t.Number <= 0 || t.Capacity <= 0 {
		return ErrInvalidTable
	}
	if t.Status == "" {
		t.Status = models.TableAvailable
	}
	if !models.ValidTableStatus(t.Status) {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, t.Status)
	}
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(t).Error; err != nil {
			return err
		}
		return recordChange(tx, SourceTables, t.ID, models.ActionInsert)
	})
}

// Update changes number and capacity; status goes through UpdateStatus.
func (d *TableDirectory) Update(ctx context.Context, id uint, number, capacity int) (*models.Table, error) {
	var t models.Table
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&t, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTableNotFound
			}
			return err
		}
		if number > 0 {
			t.Number = number
		}
		if capacity > 0 {
			t.Capacity = capacity
		}
		if err := tx.Save(&t).Error; err != nil {
			return err
		}
		return recordChange(tx, SourceTables, t.ID, models.ActionUpdate)
	})
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Delete removes a table; its reservations and status history go with it.
// Tables that ever took an order are kept for the order history.
func (d *TableDirectory) Delete(ctx context.Context, id uint) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var t models.Table
		if err := tx.First(&t, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTableNotFound
			}
			return err
		}
		var orders int64
		if err := tx.Model(&models.Order{}).Where("table_id = ?", id).Count(&orders).Error; err != nil {
			return err
		}
		if orders > 0 {
			return ErrTableHasOrders
		}
		// cascade explicitly; sqlite ignores FK actions unless foreign_keys is on
		if err := tx.Where("table_id = ?", id).Delete(&models.Reservation{}).Error; err != nil {
			return err
		}
		if err := tx.Where("table_id = ?", id).Delete(&models.TableStatusHistory{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&t).Error; err != nil {
			return err
		}
		return recordChange(tx, SourceTables, id, models.ActionDelete)
	})
}

// UpdateStatus sets a table's status and appends a history row.
func (d *TableDirectory) UpdateStatus(ctx context.Context, id uint, status string, changedBy uint, notes string) (*models.Table, error) {
	if !models.ValidTableStatus(status) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	var t models.Table
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&t, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTableNotFound
			}
			return err
		}
		t.Status = status
		if err := tx.Save(&t).Error; err != nil {
			return err
		}
		if notes == "" {
			notes = fmt.Sprintf("Status changed to %s", status)
		}
		if err := tx.Create(&models.TableStatusHistory{
			TableID:   t.ID,
			Status:    status,
			ChangedBy: &changedBy,
			Notes:     notes,
		}).Error; err != nil {
			return err
		}
		return recordChange(tx, SourceTables, t.ID, models.ActionUpdate)
	})
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// History returns a table's status changes, newest first.
func (d *TableDirectory) History(ctx context.Context, id uint) ([]models.TableStatusHistory, error) {
	var rows []models.TableStatusHistory
	err := d.db.WithContext(ctx).Where("table_id = ?", id).Order("id desc").Find(&rows).Error
	return rows, err
}
