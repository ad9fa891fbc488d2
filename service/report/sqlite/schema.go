package sqlite

// Schema creates the run tables when missing
var Schema = `create table if not exists runs
(
  id               integer primary key,
  run_id           text    not null unique,
  recorded         text    not null,
  origin           text,
  capacity_mb      integer not null,
  ticks            integer not null,
  avg_turnaround   real    not null,
  avg_wait         real    not null,
  throughput       real    not null,
  peak_utilization real    not null
);

create table if not exists run_processes
(
  id          integer primary key,
  run         integer not null references runs (id),
  outcome     text    not null,
  process_id  integer not null,
  name        text,
  memory_mb   integer not null,
  duration    integer not null,
  consumed    integer not null,
  remaining   integer not null,
  state       text    not null,
  submitted   integer not null,
  admitted    integer not null,
  dispatched  integer not null,
  finished    integer not null,
  canceled    integer not null
);

create table if not exists run_utilizations
(
  id          integer primary key,
  run         integer not null references runs (id),
  sample      integer not null,
  utilization real    not null
);
`
