package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/sprint-lab/scrumdesk/dao/model"
	"github.com/sprint-lab/scrumdesk/dao/query"
	"github.com/sprint-lab/scrumdesk/internal/resputil"
)

type MetricsMgr struct {
	name string
}

func NewMetricsMgr(_ *RegisterConfig) Manager {
	return &MetricsMgr{
		name: "metrics",
	}
}

func (mgr *MetricsMgr) GetName() string { return mgr.name }

func (mgr *MetricsMgr) RegisterPublic(metrics *gin.RouterGroup) {
	metrics.GET("", mgr.GetMetrics)
}

func (mgr *MetricsMgr) RegisterProtected(_ *gin.RouterGroup) {}

func (mgr *MetricsMgr) RegisterAdmin(_ *gin.RouterGroup) {}

// Metrics go through a custom registry so only workspace gauges are exposed,
// not the default Go runtime collectors.
var registry *prometheus.Registry

var promHTTPHandler http.Handler

var projectsGauge = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "scrumdesk_projects",
		Help: "Number of projects by status",
	},
	[]string{"status"},
)

var storiesGauge = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "scrumdesk_stories",
		Help: "Number of stories by status",
	},
	[]string{"status"},
)

var usersGauge = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "scrumdesk_users_total",
		Help: "Total number of registered users",
	},
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewMetricsMgr)
	registry = prometheus.NewRegistry()
	promHTTPHandler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
	registry.MustRegister(projectsGauge)
	registry.MustRegister(storiesGauge)
	registry.MustRegister(usersGauge)
}

// GetMetrics godoc
// @Summary Workspace counters in Prometheus exposition format
// @Tags Metrics
// @Produce plain
// @Success 200 {object} string "metrics"
// @Router /v1/metrics [get]
func (mgr *MetricsMgr) GetMetrics(c *gin.Context) {
	db := query.GetDB().WithContext(c)

	if err := countByStatus(db, &model.Project{}, projectsGauge); err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}
	if err := countByStatus(db, &model.Story{}, storiesGauge); err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	var users int64
	if err := db.Model(&model.User{}).Count(&users).Error; err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}
	usersGauge.Set(float64(users))

	promHTTPHandler.ServeHTTP(c.Writer, c.Request)
}

type statusCount struct {
	Status string
	Count  int64
}

func countByStatus(db *gorm.DB, mdl any, gauge *prometheus.GaugeVec) error {
	var rows []statusCount
	err := db.Model(mdl).
		Select("status, count(*) as count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return err
	}
	gauge.Reset()
	for _, row := range rows {
		gauge.WithLabelValues(row.Status).Set(float64(row.Count))
	}
	return nil
}
