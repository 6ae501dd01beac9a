package wind

import (
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jasonlvhit/gocron"
	log "github.com/sirupsen/logrus"

	"github.com/a-bouts/passage-server/latlon"
)

// ForecastWinds are the one or two grids valid for a single stamp.
type ForecastWinds []*Wind

func (w ForecastWinds) String() string {
	res := w[0].Date.Format("2006010215") + "(" + w[0].File
	if len(w) > 1 {
		res += "," + w[1].File
	}
	res += ")"
	return res
}

// Winds holds the loaded forecasts, refreshed from the GRIB directory
// every 15 seconds.
type Winds struct {
	dir   string
	winds map[string]ForecastWinds
	lock  sync.RWMutex
}

// InitWinds scans the GRIB directory and starts the periodic merge.
func InitWinds(dir string) *Winds {
	w := &Winds{
		dir:   dir,
		winds: map[string]ForecastWinds{},
	}
	w.Merge()

	s := gocron.NewScheduler()
	job := s.Every(15).Seconds()
	job.Do(w.Merge)

	go s.Start()

	return w
}

// FindWinds returns the forecasts bracketing m and the progress between
// them.
func (w *Winds) FindWinds(m time.Time) (ForecastWinds, ForecastWinds, float64) {
	w.lock.RLock()
	defer w.lock.RUnlock()

	if len(w.winds) == 0 {
		return nil, nil, 0
	}

	stamp := m.Format("2006010215")

	keys := make([]string, 0, len(w.winds))
	for k := range w.winds {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if keys[0] > stamp {
		return w.winds[keys[0]], nil, 0
	}
	for i := range keys {
		if keys[i] > stamp {
			h := m.Sub(w.winds[keys[i-1]][0].Date).Minutes()
			delta := w.winds[keys[i]][0].Date.Sub(w.winds[keys[i-1]][0].Date).Minutes()
			return w.winds[keys[i-1]], w.winds[keys[i]], h / delta
		}
	}
	return w.winds[keys[len(keys)-1]], nil, 0
}

// Winds lists the forecasts loaded for a stamp, for the wind endpoint.
func (w *Winds) Winds(stamp string) ForecastWinds {
	w.lock.RLock()
	defer w.lock.RUnlock()
	return w.winds[stamp]
}

// Conditions samples the forecast at a time and point. It returns the
// "coming from" direction in degrees and the speed in knots; a zero
// flow when no forecast is loaded.
func (w *Winds) Conditions(m time.Time, p latlon.LatLon) (float64, float64) {
	w1, w2, h := w.FindWinds(m)
	if w1 == nil {
		return 0, 0
	}
	direction, speed := Interpolate(w1, w2, p.Lat, p.Lon, h)
	return direction, speed * MsToKnots
}

// Merge reconciles the in-memory forecasts with the GRIB directory:
// vanished files are dropped, new ones decoded.
func (w *Winds) Merge() error {
	w.lock.Lock()
	defer w.lock.Unlock()

	var toRemove []string
	for k, ws := range w.winds {
		if _, err := os.Stat(filepath.Join(w.dir, ws[0].File)); os.IsNotExist(err) {
			toRemove = append(toRemove, k)
		}
	}
	for _, k := range toRemove {
		log.Infof("Remove forecast %s", k)
		delete(w.winds, k)
	}

	for stamp, files := range w.scan() {
		for _, file := range files {
			ws, found := w.winds[stamp]
			if found && (len(ws) == 2 || ws[0].File == file) {
				continue
			}

			date, _ := time.Parse("2006010215", stamp)
			wind, err := Init(w.dir, date, file)
			if err != nil {
				log.WithError(err).Errorf("Error loading grib file '%s'", file)
				continue
			}
			log.Debugf("Init %s %s", stamp, wind.File)
			w.winds[stamp] = append(w.winds[stamp], &wind)
		}
	}

	return nil
}

// scan groups the GRIB files of the directory by validity stamp. File
// names follow the downloader's `<refdate>.f<hour>` convention:
// 2024030100.f003 is the 00Z run, forecast hour 3.
func (w *Winds) scan() map[string][]string {
	var files []string
	err := filepath.Walk(w.dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			log.WithError(err).Errorf("Error walking file '%s'", path)
		} else if info.Mode().IsRegular() && !strings.HasSuffix(info.Name(), ".tmp") {
			files = append(files, info.Name())
		}
		return nil
	})
	if err != nil {
		log.WithError(err).Error("Error walking grib files")
		return nil
	}

	sort.Strings(files)

	byStamp := make(map[string][]string)
	seen := make(map[int]bool)

	for cpt, f := range files {
		parts := strings.Split(f, ".")
		if len(parts) < 2 || len(parts[1]) < 2 {
			continue
		}

		h, err := strconv.Atoi(parts[1][1:])
		if err != nil {
			log.WithError(err).Errorf("Error getting hour from file '%s'", f)
			continue
		}
		t, err := time.Parse("2006010215", parts[0])
		if err != nil {
			log.WithError(err).Errorf("Error parsing date '%s'", parts[0])
			continue
		}

		t = t.Add(time.Hour * time.Duration(h))

		forecastHour := int(math.Round(time.Until(t).Hours()))

		// stale forecasts are skipped, except the very last file
		if forecastHour < -3 && cpt < len(files)-1 {
			continue
		}

		// a newer run replaces a past stamp but both runs are kept for
		// future stamps, so blending stays continuous
		if seen[forecastHour] && forecastHour < 0 {
			continue
		}
		seen[forecastHour] = true

		stamp := t.Format("2006010215")
		byStamp[stamp] = append(byStamp[stamp], f)
	}

	return byStamp
}
