package repository

import (
	"context"
	"database/sql"
	"time"

	"packtrace/internal/models"
)

type DeviceSQLite struct {
	db *sql.DB
}

func NewDeviceSQLite(db *sql.DB) *DeviceSQLite { return &DeviceSQLite{db: db} }

var _ DeviceRepo = (*DeviceSQLite)(nil)

const deviceStatusOnline = "ONLINE"

const (
	upsertCamSQL = `
		INSERT INTO cams (cam_uid, serial_number, last_seen_ip, model, status, last_updated)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(cam_uid) DO UPDATE SET
			serial_number=excluded.serial_number,
			last_seen_ip=excluded.last_seen_ip,
			model=excluded.model,
			status=excluded.status,
			last_updated=excluded.last_updated
	`

	upsertNASSQL = `
		INSERT INTO nas (nas_uid, serial_number, last_seen_ip, ss_version, hostname, status, last_updated)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(nas_uid) DO UPDATE SET
			serial_number=excluded.serial_number,
			last_seen_ip=excluded.last_seen_ip,
			ss_version=excluded.ss_version,
			hostname=excluded.hostname,
			status=excluded.status,
			last_updated=excluded.last_updated
	`

	upsertScannerSQL = `
		INSERT INTO scanners (scanner_uid, station_uid, vendor_id, product_id, com_port, status, last_updated)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(scanner_uid) DO UPDATE SET
			station_uid=excluded.station_uid,
			vendor_id=excluded.vendor_id,
			product_id=excluded.product_id,
			com_port=excluded.com_port,
			status=excluded.status,
			last_updated=excluded.last_updated
	`

	insertBindingSQL = `
		INSERT INTO station_devices (station_uid, role, cam_uid, nas_uid, scanner_uid, is_active)
		VALUES (?, ?, ?, ?, ?, 1)
	`

	activeBindingsSQL = `
		SELECT sd.role,
			c.cam_uid, c.serial_number, c.last_seen_ip, c.model, c.status,
			n.nas_uid, n.last_seen_ip, n.hostname, n.status,
			sc.scanner_uid, sc.status
		FROM station_devices sd
		LEFT JOIN cams c ON c.cam_uid = sd.cam_uid
		LEFT JOIN nas n ON n.nas_uid = sd.nas_uid
		LEFT JOIN scanners sc ON sc.scanner_uid = sd.scanner_uid
		WHERE sd.station_uid = ? AND sd.is_active = 1
	`
)

// UpsertCamera registers a camera or refreshes its last-seen record.
func (r *DeviceSQLite) UpsertCamera(ctx context.Context, c models.Camera) error {
	_, err := r.db.ExecContext(ctx, upsertCamSQL,
		c.CamUID, c.SerialNumber, c.LastSeenIP, c.Model, deviceStatusOnline, nowStamp())
	return err
}

// UpsertNAS registers a storage node or refreshes its last-seen record.
func (r *DeviceSQLite) UpsertNAS(ctx context.Context, n models.NAS) error {
	_, err := r.db.ExecContext(ctx, upsertNASSQL,
		n.NasUID, n.SerialNumber, n.LastSeenIP, n.SSVersion, n.Hostname, deviceStatusOnline, nowStamp())
	return err
}

// UpsertScanner registers a barcode scanner or refreshes its record.
func (r *DeviceSQLite) UpsertScanner(ctx context.Context, s models.Scanner) error {
	_, err := r.db.ExecContext(ctx, upsertScannerSQL,
		s.ScannerUID, s.StationUID, s.VendorID, s.ProductID, s.ComPort, deviceStatusOnline, nowStamp())
	return err
}

// Bind attaches devices to a station under a role.
func (r *DeviceSQLite) Bind(ctx context.Context, b models.DeviceBinding) error {
	_, err := r.db.ExecContext(ctx, insertBindingSQL,
		b.StationUID, nullable(b.Role), nullable(b.CamUID), nullable(b.NasUID), nullable(b.ScannerUID))
	return err
}

// ActiveBindings returns the station's active bindings joined with device rows.
func (r *DeviceSQLite) ActiveBindings(ctx context.Context, stationUID string) ([]models.BoundDevice, error) {
	rows, err := r.db.QueryContext(ctx, activeBindingsSQL, stationUID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.BoundDevice, 0, 4)
	for rows.Next() {
		var (
			d         models.BoundDevice
			role      sql.NullString
			camUID    sql.NullString
			camSerial sql.NullString
			camIP     sql.NullString
			camModel  sql.NullString
			camStatus sql.NullString
			nasUID    sql.NullString
			nasIP     sql.NullString
			nasHost   sql.NullString
			nasStatus sql.NullString
			scUID     sql.NullString
			scStatus  sql.NullString
		)
		if err := rows.Scan(&role,
			&camUID, &camSerial, &camIP, &camModel, &camStatus,
			&nasUID, &nasIP, &nasHost, &nasStatus,
			&scUID, &scStatus); err != nil {
			return nil, err
		}
		d.Role = role.String
		d.CamUID = camUID.String
		d.CamSerial = camSerial.String
		d.CamIP = camIP.String
		d.CamModel = camModel.String
		d.CamStatus = camStatus.String
		d.NasUID = nasUID.String
		d.NasIP = nasIP.String
		d.NasHostname = nasHost.String
		d.NasStatus = nasStatus.String
		d.ScannerUID = scUID.String
		d.ScannerStatus = scStatus.String
		out = append(out, d)
	}
	return out, rows.Err()
}

func nowStamp() string {
	return time.Now().UTC().Format(sqliteTimeLayout)
}

// nullable maps "" to NULL so empty binding slots stay NULL in the table.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
