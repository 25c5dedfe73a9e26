package models

type DashboardStats struct {
	UsersTotal      int `json:"users_total"`
	PoolsTotal      int `json:"pools_total"`
	ActivePools     int `json:"active_pools"`
	EntriesTotal    int `json:"entries_total"`
	ResultsRecorded int `json:"results_recorded"`
}
