package repositories

import (
	"context"
	"database/sql"
	"errors"

	intconfig "busticket/internal/config"
	"busticket/internal/domain"
	"busticket/internal/domain/models"

	"github.com/go-sql-driver/mysql"
)

type VehicleRepository struct {
	DB *sql.DB
}

func (r VehicleRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

func (r VehicleRepository) List(ctx context.Context) ([]models.Vehicle, error) {
	rows, err := r.db().QueryContext(ctx, `
		SELECT id, plate, type, seat_count, status
		FROM vehicles
		ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Vehicle{}
	for rows.Next() {
		var v models.Vehicle
		if err := rows.Scan(&v.ID, &v.Plate, &v.Type, &v.SeatCount, &v.Status); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r VehicleRepository) Create(ctx context.Context, v models.Vehicle) (int64, error) {
	res, err := r.db().ExecContext(ctx, `
		INSERT INTO vehicles (plate, type, seat_count, status)
		VALUES (?, ?, ?, ?)`,
		v.Plate, v.Type, v.SeatCount, v.Status,
	)
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == mysqlErrDuplicateEntry {
			return 0, domain.ConflictError{Resource: "vehicle", Msg: "plate already registered"}
		}
		return 0, err
	}
	return res.LastInsertId()
}

func (r VehicleRepository) Update(ctx context.Context, v models.Vehicle) error {
	res, err := r.db().ExecContext(ctx, `
		UPDATE vehicles SET plate=?, type=?, seat_count=?, status=? WHERE id=?`,
		v.Plate, v.Type, v.SeatCount, v.Status, v.ID,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundError{Resource: "vehicle"}
	}
	return nil
}

func (r VehicleRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db().ExecContext(ctx, `DELETE FROM vehicles WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundError{Resource: "vehicle"}
	}
	return nil
}
